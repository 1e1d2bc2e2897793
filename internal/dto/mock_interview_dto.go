package dto

import "github.com/rgpv-tpo/placement-api/internal/models"

// MockResultResponse is one mock-interview attempt for a student.
type MockResultResponse struct {
	AttemptNumber int             `json:"attempt_number"`
	Selected      bool            `json:"selected"`
	RejectedAt    string          `json:"rejected_at,omitempty"`
	Rounds        map[string]bool `json:"rounds"`
}

// MockImportRowError reports one spreadsheet row that could not be imported.
type MockImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// MockImportSummary is the outcome of a bulk mock-result upload. Row errors
// never abort the batch; they are collected here instead.
type MockImportSummary struct {
	Imported int                  `json:"imported"`
	Errors   []MockImportRowError `json:"errors"`
}

// NewMockResultResponse maps a stored result to its response shape.
func NewMockResultResponse(result models.MockInterviewResult) MockResultResponse {
	rounds := make(map[string]bool, len(result.Rounds))
	for name, value := range result.Rounds {
		if passed, ok := value.(bool); ok {
			rounds[name] = passed
		}
	}
	return MockResultResponse{
		AttemptNumber: result.AttemptNumber,
		Selected:      result.Selected,
		RejectedAt:    result.RejectedAt,
		Rounds:        rounds,
	}
}
