package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/assistant/internal/models"
)

func (m *Menu) notesMenu(ctx context.Context) error {
	return m.choose(ctx, "Notes", []action{
		{"Create a note", m.addNote},
		{"List notes", m.listNotes},
		{"Show a note", m.showNote},
		{"Edit a note", m.editNote},
		{"Delete a note", m.deleteNote},
		{"Import from CSV", m.importer(m.ws.Notes.Import, "notes")},
		{"Export to CSV", m.exporter(m.ws.Notes.Export)},
	}, "Back to main menu")
}

func (m *Menu) addNote(context.Context) error {
	title, err := m.prompt("Title: ")
	if err != nil {
		return err
	}
	content, err := m.prompt("Content: ")
	if err != nil {
		return err
	}
	n, err := m.ws.Notes.Add(title, content)
	if err != nil {
		return err
	}
	m.printf("Note %d added.\n", n.ID)
	return nil
}

func (m *Menu) listNotes(context.Context) error {
	list := m.ws.Notes.List()
	if len(list) == 0 {
		m.println("No notes yet.")
		return nil
	}
	for _, n := range list {
		m.printf("%d. %s (%s)\n", n.ID, n.Title, n.Timestamp)
	}
	return nil
}

func (m *Menu) showNote(context.Context) error {
	id, err := m.promptID("Note ID: ")
	if err != nil {
		return err
	}
	n, err := m.ws.Notes.Get(id)
	if err != nil {
		return err
	}
	m.printMarkdown(noteMarkdown(n))
	return nil
}

func noteMarkdown(n models.Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", n.Title)
	fmt.Fprintf(&b, "*#%d, %s*\n\n", n.ID, n.Timestamp)
	b.WriteString(n.Content)
	b.WriteString("\n")
	return b.String()
}

func (m *Menu) editNote(context.Context) error {
	id, err := m.promptID("Note ID: ")
	if err != nil {
		return err
	}
	fields, err := m.promptFields(
		[2]string{"title", "New title"},
		[2]string{"content", "New content"},
	)
	if err != nil {
		return err
	}
	if _, err := m.ws.Notes.Edit(id, models.NotePatchFromFields(fields)); err != nil {
		return err
	}
	m.println("Note updated.")
	return nil
}

func (m *Menu) deleteNote(context.Context) error {
	id, err := m.promptID("Note ID: ")
	if err != nil {
		return err
	}
	if err := m.ws.Notes.Delete(id); err != nil {
		return err
	}
	m.println("Note deleted.")
	return nil
}

// importer and exporter adapt a manager's CSV operations to a menu action.
func (m *Menu) importer(importFn func(path string) (int, error), noun string) func(context.Context) error {
	return func(context.Context) error {
		path, err := m.prompt("CSV file to import from: ")
		if err != nil {
			return err
		}
		n, err := importFn(path)
		if err != nil {
			return err
		}
		m.printf("Imported %d %s.\n", n, noun)
		return nil
	}
}

func (m *Menu) exporter(exportFn func(path string) error) func(context.Context) error {
	return func(context.Context) error {
		path, err := m.prompt("CSV file to export to: ")
		if err != nil {
			return err
		}
		if err := exportFn(path); err != nil {
			return err
		}
		m.printf("Exported to %s.\n", path)
		return nil
	}
}
