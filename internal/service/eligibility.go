package service

import "strings"

// EligibilitySnapshot is the academic state a drive's criteria are evaluated
// against.
type EligibilitySnapshot struct {
	CGPA           float64
	Branch         string
	ActiveBacklogs int
}

// EligibilityCriteria are the per-drive requirements. An empty branch set
// admits every branch.
type EligibilityCriteria struct {
	MinCGPA         float64
	AllowedBranches []string
	MaxBacklogs     int
}

// IsEligible reports whether a student snapshot satisfies the criteria. Pure
// function, monotonic in CGPA: raising CGPA never flips eligible to
// ineligible for fixed criteria.
func IsEligible(snapshot EligibilitySnapshot, criteria EligibilityCriteria) bool {
	if snapshot.CGPA < criteria.MinCGPA {
		return false
	}
	if snapshot.ActiveBacklogs > criteria.MaxBacklogs {
		return false
	}
	if len(criteria.AllowedBranches) == 0 {
		return true
	}
	for _, branch := range criteria.AllowedBranches {
		if strings.EqualFold(strings.TrimSpace(branch), strings.TrimSpace(snapshot.Branch)) {
			return true
		}
	}
	return false
}
