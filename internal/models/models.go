// Package models defines the record types owned by the four managers.
package models

import (
	"github.com/shopspring/decimal"

	"github.com/starford/assistant/internal/date"
)

// Note is a titled free-text entry. Timestamp is refreshed on every edit.
type Note struct {
	ID        int    `json:"note_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// RecordID returns the note id.
func (n Note) RecordID() int { return n.ID }

// Task is a to-do item with a priority and a due date.
type Task struct {
	ID          int       `json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Done        bool      `json:"done"`
	Priority    Priority  `json:"priority"`
	DueDate     date.Date `json:"due_date"`
}

// RecordID returns the task id.
func (t Task) RecordID() int { return t.ID }

// Contact is an address-book entry, looked up by name or phone.
type Contact struct {
	ID    int    `json:"contact_id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// RecordID returns the contact id.
func (c Contact) RecordID() int { return c.ID }

// Matches reports whether info equals the contact's name or phone.
func (c Contact) Matches(info string) bool {
	return c.Name == info || c.Phone == info
}

// FinanceRecord is a signed money movement: positive amounts are income,
// negative amounts are expenses.
type FinanceRecord struct {
	ID          int             `json:"record_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        date.Date       `json:"date"`
	Description string          `json:"description"`
}

// RecordID returns the record id.
func (r FinanceRecord) RecordID() int { return r.ID }
