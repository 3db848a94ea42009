// Package export renders task lists for download.
package export

import (
	"fmt"
	"strconv"

	"github.com/Dan9191/task-service/internal/models"
	"github.com/beevik/etree"
)

// TasksXML builds <tasks owner=".." count=".."> with one <task> per entry
func TasksXML(ownerID string, tasks []models.Task) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("tasks")
	root.CreateAttr("owner", ownerID)
	root.CreateAttr("count", strconv.Itoa(len(tasks)))

	for _, t := range tasks {
		el := root.CreateElement("task")
		el.CreateAttr("id", t.ID)
		el.CreateElement("description").SetText(t.Task)
		el.CreateElement("dueDate").SetText(t.DueDate.String())
		el.CreateElement("status").SetText(t.Status)
		el.CreateElement("priority").SetText(t.Priority)
		el.CreateElement("createdBy").SetText(t.CreatedBy)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render tasks xml: %w", err)
	}
	return out, nil
}
