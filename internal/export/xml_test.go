package export

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/Dan9191/task-service/internal/models"
	"github.com/beevik/etree"
)

func TestTasksXML(t *testing.T) {
	due, _ := models.ParseDate("2024-01-01")
	tasks := []models.Task{
		{ID: "t1", Task: "write <draft> & ship", DueDate: due, Status: "open", Priority: "high", CreatedBy: "alice-id"},
		{ID: "t2", Task: "review", DueDate: due, Status: "done", Priority: "low", CreatedBy: "alice-id"},
	}

	out, err := TasksXML("alice-id", tasks)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)) {
		t.Fatalf("missing xml declaration:\n%s", out)
	}
	if !bytes.Contains(out, []byte(`<tasks owner="alice-id" count="2">`)) {
		t.Fatalf("missing root attributes:\n%s", out)
	}
	if !bytes.Contains(out, []byte("write &lt;draft&gt; &amp; ship")) {
		t.Fatalf("expected escaped description:\n%s", out)
	}

	owner, parsed, err := parseTasksXML(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if owner != "alice-id" || len(parsed) != 2 {
		t.Fatalf("unexpected parse result owner=%q n=%d", owner, len(parsed))
	}
	if parsed[0] != tasks[0] {
		t.Fatalf("first task mismatch:\n got %+v\nwant %+v", parsed[0], tasks[0])
	}
}

func TestTasksXMLEmpty(t *testing.T) {
	out, err := TasksXML("nobody", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Contains(out, []byte(`count="0"`)) {
		t.Fatalf("expected zero count:\n%s", out)
	}
	_, parsed, err := parseTasksXML(out)
	if err != nil || len(parsed) != 0 {
		t.Fatalf("expected no tasks, got %d %v", len(parsed), err)
	}
}

func TestParsedDocumentMustHaveTasksRoot(t *testing.T) {
	if _, _, err := parseTasksXML([]byte(`<items/>`)); err == nil {
		t.Fatalf("expected error for a document without <tasks>")
	}
}

// parseTasksXML reads a document produced by TasksXML
func parseTasksXML(data []byte) (string, []models.Task, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	root := doc.SelectElement("tasks")
	if root == nil {
		return "", nil, fmt.Errorf("tasks element not found in XML")
	}

	var tasks []models.Task
	for _, el := range root.FindElements("./task") {
		t := models.Task{
			ID:        el.SelectAttrValue("id", ""),
			Task:      childText(el, "description"),
			Status:    childText(el, "status"),
			Priority:  childText(el, "priority"),
			CreatedBy: childText(el, "createdBy"),
		}
		if due := childText(el, "dueDate"); due != "" {
			d, err := models.ParseDate(due)
			if err != nil {
				return "", nil, err
			}
			t.DueDate = d
		}
		tasks = append(tasks, t)
	}
	return root.SelectAttrValue("owner", ""), tasks, nil
}

func childText(el *etree.Element, tag string) string {
	if child := el.SelectElement(tag); child != nil {
		return child.Text()
	}
	return ""
}
