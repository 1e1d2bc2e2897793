package dto

import "time"

// Notification kinds surfaced to the admin panel.
const (
	NotificationKindNewCaf      = "new_caf"
	NotificationKindEditRequest = "edit_request"
)

// NotificationResponse is one pending workflow item. Notifications are a
// projection over CAF records, so the identifier is the CAF identifier.
type NotificationResponse struct {
	ID           uint                   `json:"id"`
	Kind         string                 `json:"type"`
	StudentID    uint                   `json:"student_id"`
	StudentName  string                 `json:"student_name"`
	EnrollmentNo string                 `json:"enrollment_no"`
	Timestamp    time.Time              `json:"timestamp"`
	Details      map[string]interface{} `json:"details,omitempty"`
}
