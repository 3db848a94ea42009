package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func validTask() Task {
	return Task{
		Task:      "write report",
		DueDate:   NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Status:    "open",
		Priority:  "high",
		CreatedBy: "alice-id",
	}
}

func TestTaskValidate(t *testing.T) {
	task := validTask()
	if err := task.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	cases := map[string]func(*Task){
		"task":      func(t *Task) { t.Task = " " },
		"dueDate":   func(t *Task) { t.DueDate = Date{} },
		"status":    func(t *Task) { t.Status = "" },
		"priority":  func(t *Task) { t.Priority = "" },
		"createdBy": func(t *Task) { t.CreatedBy = "" },
	}
	for field, mutate := range cases {
		task := validTask()
		mutate(&task)
		err := task.Validate()
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != field {
			t.Fatalf("%s: expected field %q in error, got %v", field, field, err)
		}
	}
}

func TestTaskJSONShape(t *testing.T) {
	task := validTask()
	task.ID = "t-1"
	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"t-1","task":"write report","dueDate":"2024-01-01","status":"open","priority":"high","createdBy":"alice-id"}`
	if string(data) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", data, want)
	}
}

func TestParseTaskPatchWhitelist(t *testing.T) {
	patch, err := ParseTaskPatch([]byte(`{"status":"done","dueDate":"2024-02-03T10:00:00Z"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if patch.Task != nil || patch.Priority != nil {
		t.Fatalf("expected untouched fields to stay nil")
	}
	if *patch.Status != "done" || patch.DueDate.String() != "2024-02-03" {
		t.Fatalf("unexpected patch: status=%q due=%s", *patch.Status, patch.DueDate)
	}

	for _, body := range []string{`{"createdBy":"mallory"}`, `{"id":"x"}`, `{"isAdmin":true}`} {
		_, err := ParseTaskPatch([]byte(body))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", body, err)
		}
	}
}

func TestParseTaskPatchRejectsBlankFields(t *testing.T) {
	for _, body := range []string{`{"task":""}`, `{"dueDate":""}`, `{"status":"  "}`, `{"priority":""}`} {
		_, err := ParseTaskPatch([]byte(body))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", body, err)
		}
	}
}

func TestParseTaskPatchRejectsTrailingData(t *testing.T) {
	for _, body := range []string{`{"status":"x"}{"createdBy":"m"}`, `{"status":"x"} 1`, `{"status":"x"}]`} {
		_, err := ParseTaskPatch([]byte(body))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", body, err)
		}
	}
	if _, err := ParseTaskPatch([]byte("{\"status\":\"x\"}\n")); err != nil {
		t.Fatalf("trailing whitespace must be accepted, got %v", err)
	}
}

func TestParseTaskPatchEmptyBody(t *testing.T) {
	patch, err := ParseTaskPatch(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !patch.Empty() {
		t.Fatalf("expected empty patch")
	}
	if _, err := ParseTaskPatch([]byte("{")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for malformed body, got %v", err)
	}
}

func TestTaskPatchApply(t *testing.T) {
	task := validTask()
	status := "done"
	TaskPatch{Status: &status}.Apply(&task)
	if task.Status != "done" || task.Task != "write report" || task.Priority != "high" {
		t.Fatalf("unexpected task after apply: %+v", task)
	}
}

func TestDateParsing(t *testing.T) {
	for _, in := range []string{"2024-01-01", "2024-01-01T00:00:00.000Z", "2024-01-01T23:30:00Z"} {
		d, err := ParseDate(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if d.String() != "2024-01-01" {
			t.Fatalf("%s: got %s", in, d)
		}
	}
	if _, err := ParseDate("01/02/2024"); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2024-05-06" {
		t.Fatalf("scan time: %v %s", err, d)
	}
	if err := d.Scan("2024-05-07"); err != nil || d.String() != "2024-05-07" {
		t.Fatalf("scan string: %v %s", err, d)
	}
	if err := d.Scan([]byte("2024-05-08 00:00:00+00:00")); err != nil || d.String() != "2024-05-08" {
		t.Fatalf("scan bytes: %v %s", err, d)
	}
	if err := d.Scan(42); err == nil || !strings.Contains(err.Error(), "cannot scan") {
		t.Fatalf("expected scan error, got %v", err)
	}
}
