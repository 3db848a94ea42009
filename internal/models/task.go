package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Task represents one unit of work owned by CreatedBy
type Task struct {
	ID        string `json:"id"`
	Task      string `json:"task"`
	DueDate   Date   `json:"dueDate"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	CreatedBy string `json:"createdBy"` // Owner identifier, not checked against users
}

// Validate reports the first missing required field
func (t *Task) Validate() error {
	switch {
	case strings.TrimSpace(t.Task) == "":
		return Invalid("task", "is required")
	case t.DueDate.IsZero():
		return Invalid("dueDate", "is required")
	case strings.TrimSpace(t.Status) == "":
		return Invalid("status", "is required")
	case strings.TrimSpace(t.Priority) == "":
		return Invalid("priority", "is required")
	case strings.TrimSpace(t.CreatedBy) == "":
		return Invalid("createdBy", "is required")
	}
	return nil
}

// TaskPatch lists the fields an update may touch. Nil means untouched.
// The owner is not part of it.
type TaskPatch struct {
	Task     *string `json:"task,omitempty"`
	DueDate  *Date   `json:"dueDate,omitempty"`
	Status   *string `json:"status,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

// DecodeTaskPatch reads a JSON object and rejects keys outside the whitelist.
func DecodeTaskPatch(r io.Reader) (TaskPatch, error) {
	var patch TaskPatch
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			return TaskPatch{}, nil
		}
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return TaskPatch{}, Invalid(strings.Trim(field, `"`), "cannot be updated")
		}
		return TaskPatch{}, &ValidationError{Field: "body", Reason: fmt.Sprintf("is malformed: %v", err)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return TaskPatch{}, Invalid("body", "must hold a single JSON object")
	}
	return patch, patch.Validate()
}

// ParseTaskPatch is DecodeTaskPatch over a byte slice
func ParseTaskPatch(data []byte) (TaskPatch, error) {
	return DecodeTaskPatch(bytes.NewReader(data))
}

// Validate rejects blanking out a required field
func (p TaskPatch) Validate() error {
	if p.Task != nil && strings.TrimSpace(*p.Task) == "" {
		return Invalid("task", "must not be empty")
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		return Invalid("dueDate", "must not be empty")
	}
	if p.Status != nil && strings.TrimSpace(*p.Status) == "" {
		return Invalid("status", "must not be empty")
	}
	if p.Priority != nil && strings.TrimSpace(*p.Priority) == "" {
		return Invalid("priority", "must not be empty")
	}
	return nil
}

// Empty reports whether the patch changes nothing
func (p TaskPatch) Empty() bool {
	return p.Task == nil && p.DueDate == nil && p.Status == nil && p.Priority == nil
}

// Apply overwrites the supplied fields of t
func (p TaskPatch) Apply(t *Task) {
	if p.Task != nil {
		t.Task = *p.Task
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}
