package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/assistant/internal/date"
	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/tasks"
)

// priorityChoices renders "1. High, 2. Medium, 3. Low".
var priorityChoices = func() string {
	parts := make([]string, len(models.Priorities))
	for i, p := range models.Priorities {
		parts[i] = fmt.Sprintf("%d. %s", i+1, p)
	}
	return strings.Join(parts, ", ")
}()

func (m *Menu) tasksMenu(ctx context.Context) error {
	return m.choose(ctx, "Tasks", []action{
		{"Add a task", m.addTask},
		{"List tasks", m.listTasks},
		{"Mark a task as done", m.completeTask},
		{"Edit a task", m.editTask},
		{"Delete a task", m.deleteTask},
		{"Import from CSV", m.importer(m.ws.Tasks.Import, "tasks")},
		{"Export to CSV", m.exporter(m.ws.Tasks.Export)},
	}, "Back to main menu")
}

func (m *Menu) addTask(context.Context) error {
	title, err := m.prompt("Title: ")
	if err != nil {
		return err
	}
	description, err := m.prompt("Description: ")
	if err != nil {
		return err
	}
	priority, err := m.prompt("Priority (" + priorityChoices + "): ")
	if err != nil {
		return err
	}
	due, err := m.prompt("Due date (DD-MM-YYYY): ")
	if err != nil {
		return err
	}
	t, err := m.ws.Tasks.Add(title, description, priority, due)
	if err != nil {
		return err
	}
	m.printf("Task %d added.\n", t.ID)
	return nil
}

func (m *Menu) listTasks(context.Context) error {
	f, err := m.taskFilter()
	if err != nil {
		return err
	}
	list := m.ws.Tasks.List(f)
	if len(list) == 0 {
		m.println("No matching tasks.")
		return nil
	}
	for _, t := range list {
		m.println(taskLine(t))
	}
	return nil
}

// taskFilter asks for the optional status, priority and due date filters.
func (m *Menu) taskFilter() (tasks.Filter, error) {
	var f tasks.Filter
	status, err := m.prompt("Status (done/open, Enter for any): ")
	if err != nil {
		return f, err
	}
	switch strings.ToLower(status) {
	case "":
	case "done":
		done := true
		f.Done = &done
	case "open":
		done := false
		f.Done = &done
	default:
		return f, fmt.Errorf("unknown status %q", status)
	}

	priority, err := m.prompt("Priority (" + priorityChoices + ", Enter for any): ")
	if err != nil {
		return f, err
	}
	if priority != "" {
		p, err := models.ParsePriority(priority)
		if err != nil {
			return f, err
		}
		f.Priority = &p
	}

	due, err := m.prompt("Due on or before (DD-MM-YYYY, Enter for any): ")
	if err != nil {
		return f, err
	}
	if due != "" {
		d, err := date.Parse(due)
		if err != nil {
			return f, err
		}
		f.DueBy = &d
	}
	return f, nil
}

func taskLine(t models.Task) string {
	mark := " "
	if t.Done {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] %d. %s (%s, due %s)", mark, t.ID, t.Title, t.Priority, t.DueDate)
	if t.Description != "" {
		line += ": " + t.Description
	}
	return line
}

func (m *Menu) completeTask(context.Context) error {
	id, err := m.promptID("Task ID: ")
	if err != nil {
		return err
	}
	t, err := m.ws.Tasks.MarkDone(id)
	if err != nil {
		return err
	}
	m.printf("Task %d marked as done.\n", t.ID)
	return nil
}

func (m *Menu) editTask(context.Context) error {
	id, err := m.promptID("Task ID: ")
	if err != nil {
		return err
	}
	fields, err := m.promptFields(
		[2]string{"title", "New title"},
		[2]string{"description", "New description"},
		[2]string{"priority", "New priority (" + priorityChoices + ")"},
		[2]string{"due_date", "New due date (DD-MM-YYYY)"},
	)
	if err != nil {
		return err
	}
	patch, err := models.TaskPatchFromFields(fields)
	if err != nil {
		return err
	}
	if _, err := m.ws.Tasks.Edit(id, patch); err != nil {
		return err
	}
	m.println("Task updated.")
	return nil
}

func (m *Menu) deleteTask(context.Context) error {
	id, err := m.promptID("Task ID: ")
	if err != nil {
		return err
	}
	if err := m.ws.Tasks.Delete(id); err != nil {
		return err
	}
	m.println("Task deleted.")
	return nil
}
