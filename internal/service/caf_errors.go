package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

var (
	// ErrCafNotFound indicates no CAF record exists for the given key.
	ErrCafNotFound = errors.New("caf not found")
	// ErrStudentNotFound indicates the student registry has no such entry.
	ErrStudentNotFound = errors.New("student not found")
	// ErrCafConflict indicates the record was mutated concurrently; the caller
	// must retry with fresh state.
	ErrCafConflict = errors.New("caf was modified concurrently")
	// ErrEnrollmentMismatch indicates the submitted enrollment number does not
	// match the authenticated student's registry entry.
	ErrEnrollmentMismatch = errors.New("enrollment number does not match student record")
)

// InvalidTransitionError reports a workflow event fired from a state where it
// is not defined. It is always a caller bug and never silently ignored.
type InvalidTransitionError struct {
	Event       string
	Status      models.CafStatus
	EditPending bool
}

func (e *InvalidTransitionError) Error() string {
	state := string(e.Status)
	if e.EditPending {
		state += "+edit_pending"
	}
	return fmt.Sprintf("event %q is not valid in state %q", e.Event, state)
}

// FieldNotEditableError reports an edit request touching fields outside the
// configured allowlist. The request is rejected outright, never queued.
type FieldNotEditableError struct {
	Fields []string
}

func (e *FieldNotEditableError) Error() string {
	fields := append([]string(nil), e.Fields...)
	sort.Strings(fields)
	return fmt.Sprintf("fields not editable: %s", strings.Join(fields, ", "))
}
