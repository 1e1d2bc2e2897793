package service

import (
	"context"
	"time"
)

// Workflow event kinds published to the realtime stream and the message bus.
const (
	EventCafSubmitted  = "caf.submitted"
	EventCafApproved   = "caf.approved"
	EventCafRejected   = "caf.rejected"
	EventEditRequested = "caf.edit_requested"
	EventEditApproved  = "caf.edit_approved"
	EventEditRejected  = "caf.edit_rejected"
)

// WorkflowEvent describes one CAF workflow transition after it committed.
type WorkflowEvent struct {
	Kind         string            `json:"kind"`
	CafID        uint              `json:"caf_id"`
	StudentID    uint              `json:"student_id"`
	StudentName  string            `json:"student_name"`
	EnrollmentNo string            `json:"enrollment_no"`
	OccurredAt   time.Time         `json:"occurred_at"`
	Details      map[string]string `json:"details,omitempty"`
}

// WorkflowEventPublisher receives committed workflow transitions. Publishing
// is best effort; a failed publish never rolls back the transition.
type WorkflowEventPublisher interface {
	PublishWorkflowEvent(ctx context.Context, event WorkflowEvent)
}
