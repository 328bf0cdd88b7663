// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the assistant managers as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/assistant/internal/calculator"
	"github.com/starford/assistant/internal/date"
	"github.com/starford/assistant/internal/finance"
	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/tasks"
	"github.com/starford/assistant/internal/workspace"
)

// Server wraps the MCP server with the assistant tools.
type Server struct {
	mcp      *server.MCPServer
	ws       *workspace.Workspace
	currency string
}

// New creates a new MCP server with all tools registered. Amounts are
// formatted in currency.
func New(ws *workspace.Workspace, currency string) *Server {
	s := &Server{ws: ws, currency: currency}

	s.mcp = server.NewMCPServer(
		"Assistant",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Create a note. The creation timestamp is set by the server."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Note body, Markdown allowed")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List every note with its id, title and timestamp."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read one note by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Create a task. Read assistant://record-formats for the date and priority formats."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("description", mcp.Description("Optional details")),
		mcp.WithString("priority", mcp.Required(), mcp.Description("High, Medium or Low")),
		mcp.WithString("due_date", mcp.Required(), mcp.Description("Due date as DD-MM-YYYY")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, optionally filtered. Filters combine with AND."),
		mcp.WithString("status", mcp.Description("done or open")),
		mcp.WithString("priority", mcp.Description("High, Medium or Low")),
		mcp.WithString("due_before", mcp.Description("Only tasks due on or before this DD-MM-YYYY date")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task as done."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
	), s.completeTask)

	s.mcp.AddTool(mcp.NewTool("find_contact",
		mcp.WithDescription("Find the first contact whose name or phone equals the query exactly."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Exact name or phone")),
	), s.findContact)

	s.mcp.AddTool(mcp.NewTool("add_contact",
		mcp.WithDescription("Create a contact."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Contact name")),
		mcp.WithString("phone", mcp.Description("Phone number")),
		mcp.WithString("email", mcp.Description("Email address")),
	), s.addContact)

	s.mcp.AddTool(mcp.NewTool("add_finance_record",
		mcp.WithDescription("Record income (positive amount) or an expense (negative amount)."),
		mcp.WithString("amount", mcp.Required(), mcp.Description("Signed decimal such as 1200 or -40.50")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date as DD-MM-YYYY")),
		mcp.WithString("description", mcp.Description("Optional details")),
	), s.addFinanceRecord)

	s.mcp.AddTool(mcp.NewTool("finance_report",
		mcp.WithDescription("Income, expenses, balance and per-category sums for an inclusive date range."),
		mcp.WithString("start", mcp.Required(), mcp.Description("First day as DD-MM-YYYY")),
		mcp.WithString("end", mcp.Required(), mcp.Description("Last day as DD-MM-YYYY")),
	), s.financeReport)

	s.mcp.AddTool(mcp.NewTool("finance_balance",
		mcp.WithDescription("Income, expenses and balance over every record."),
	), s.financeBalance)

	s.mcp.AddTool(mcp.NewTool("calculate",
		mcp.WithDescription("Evaluate a single binary expression such as 6/3. "+
			"Only one operator (+, -, *, /) is supported."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Expression to evaluate")),
	), s.calculate)

	// Resource: record formats.
	s.mcp.AddResource(
		mcp.NewResource(RecordFormatsURI, "Record Formats",
			mcp.WithResourceDescription("Date, amount and priority formats accepted by the tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormats,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// run calls fn under the workspace lock and renders its value as indented
// JSON. Domain failures become tool errors, never Go errors.
func (s *Server) run(fn func() (any, error)) (*mcp.CallToolResult, error) {
	var v any
	err := s.ws.Exclusive(func() (err error) {
		v, err = fn()
		return err
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content := req.GetString("content", "")
	return s.run(func() (any, error) {
		return s.ws.Notes.Add(title, content)
	})
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(func() (any, error) {
		return s.ws.Notes.List(), nil
	})
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(func() (any, error) {
		return s.ws.Notes.Get(id)
	})
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	priority, err := req.RequireString("priority")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	due, err := req.RequireString("due_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := req.GetString("description", "")
	return s.run(func() (any, error) {
		return s.ws.Tasks.Add(title, description, priority, due)
	})
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var f tasks.Filter
	switch status := strings.ToLower(req.GetString("status", "")); status {
	case "":
	case "done", "open":
		done := status == "done"
		f.Done = &done
	default:
		return mcp.NewToolResultError(fmt.Sprintf("status must be done or open, got %q", status)), nil
	}
	if v := req.GetString("priority", ""); v != "" {
		p, err := models.ParsePriority(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Priority = &p
	}
	if v := req.GetString("due_before", ""); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.DueBy = &d
	}
	return s.run(func() (any, error) {
		return s.ws.Tasks.List(f), nil
	})
}

func (s *Server) completeTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(func() (any, error) {
		return s.ws.Tasks.MarkDone(id)
	})
}

func (s *Server) findContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(func() (any, error) {
		return s.ws.Contacts.Find(query)
	})
}

func (s *Server) addContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	phone := req.GetString("phone", "")
	email := req.GetString("email", "")
	return s.run(func() (any, error) {
		return s.ws.Contacts.Add(name, phone, email)
	})
}

func (s *Server) addFinanceRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	amount, err := req.RequireString("amount")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := req.GetString("description", "")
	return s.run(func() (any, error) {
		return s.ws.Finance.Add(amount, category, day, description)
	})
}

// totalsView is a Totals value with its currency rendering.
type totalsView struct {
	finance.Totals
	Currency  string                  `json:"currency"`
	Formatted finance.FormattedTotals `json:"formatted"`
}

func (s *Server) view(t finance.Totals) totalsView {
	return totalsView{Totals: t, Currency: s.currency, Formatted: t.Format(s.currency)}
}

func (s *Server) financeReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawStart, err := req.RequireString("start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawEnd, err := req.RequireString("end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := date.Parse(rawStart)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := date.Parse(rawEnd)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(func() (any, error) {
		rep := s.ws.Finance.Report(start, end)
		return struct {
			Start date.Date `json:"start"`
			End   date.Date `json:"end"`
			totalsView
			Categories []finance.CategoryTotal `json:"categories"`
		}{rep.Start, rep.End, s.view(rep.Totals), rep.Categories}, nil
	})
}

func (s *Server) financeBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(func() (any, error) {
		return s.view(s.ws.Finance.Balance()), nil
	})
}

func (s *Server) calculate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := calculator.Evaluate(expr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprint(v)), nil
}

func (s *Server) readRecordFormats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RecordFormatsURI,
			MIMEType: "text/markdown",
			Text:     RecordFormats,
		},
	}, nil
}
