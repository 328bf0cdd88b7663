package api

import (
	"encoding/json"

	"github.com/starford/assistant/internal/date"
	"github.com/starford/assistant/internal/finance"
	"github.com/starford/assistant/internal/models"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title   string `json:"title" example:"Groceries"`
	Content string `json:"content" example:"milk, eggs"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total" example:"3"`
}

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title" example:"File taxes"`
	Description string `json:"description"`
	Priority    string `json:"priority" example:"High"`
	DueDate     string `json:"due_date" example:"30-04-2024"`
}

// TaskListResponse wraps task listings.
type TaskListResponse struct {
	Tasks []models.Task `json:"tasks"`
	Total int           `json:"total"`
}

// CreateContactRequest is the request body for creating a contact.
type CreateContactRequest struct {
	Name  string `json:"name" example:"Ann"`
	Phone string `json:"phone" example:"555-0100"`
	Email string `json:"email" example:"ann@example.com"`
}

// ContactListResponse wraps contact listings.
type ContactListResponse struct {
	Contacts []models.Contact `json:"contacts"`
	Total    int              `json:"total"`
}

// CreateFinanceRequest is the request body for recording a movement. Amount
// may be sent as a JSON number or a decimal string.
type CreateFinanceRequest struct {
	Amount      json.Number `json:"amount" example:"-40.50"`
	Category    string      `json:"category" example:"food"`
	Date        string      `json:"date" example:"05-03-2024"`
	Description string      `json:"description"`
}

// FinanceListResponse wraps finance listings.
type FinanceListResponse struct {
	Records []models.FinanceRecord `json:"records"`
	Total   int                    `json:"total"`
}

// TotalsResponse is the balance payload.
type TotalsResponse struct {
	finance.Totals
	Currency  string                  `json:"currency" example:"USD"`
	Formatted finance.FormattedTotals `json:"formatted"`
}

// ReportResponse is the date range report payload.
type ReportResponse struct {
	Start date.Date `json:"start"`
	End   date.Date `json:"end"`
	TotalsResponse
	Categories []finance.CategoryTotal `json:"categories"`
}

// CalcRequest is the request body for the calculator.
type CalcRequest struct {
	Expression string `json:"expression" example:"6/3"`
}

// CalcResponse is the calculator result.
type CalcResponse struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}
