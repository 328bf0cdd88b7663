// Package menu is the interactive text front end over the workspace managers.
//
// The menu reads one line per prompt, calls a manager and prints the result or
// the error. No manager error ends the loop; only end of input, the exit
// choice or a cancelled context does.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/starford/assistant/internal/workspace"
)

// RenderFunc turns markdown into terminal text.
type RenderFunc func(markdown string) (string, error)

// Option configures a Menu.
type Option func(*Menu)

// WithRenderer replaces the glamour markdown renderer.
func WithRenderer(fn RenderFunc) Option {
	return func(m *Menu) {
		m.render = fn
	}
}

// Menu drives the managers from line-oriented input.
type Menu struct {
	ws       *workspace.Workspace
	in       *bufio.Scanner
	out      io.Writer
	currency string
	render   RenderFunc
}

// New creates a Menu reading from in and writing to out. Amounts are
// formatted in currency.
func New(ws *workspace.Workspace, in io.Reader, out io.Writer, currency string, opts ...Option) *Menu {
	m := &Menu{
		ws:       ws,
		in:       bufio.NewScanner(in),
		out:      out,
		currency: currency,
		render:   renderNoTTY,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func renderNoTTY(markdown string) (string, error) {
	return glamour.Render(markdown, "notty")
}

// action is one numbered menu entry.
type action struct {
	label string
	run   func(ctx context.Context) error
}

// Run prints the notices for absent stores and loops over the main menu
// until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	m.println("Welcome to your personal assistant!")
	for _, d := range m.ws.Domains() {
		if d.Store.Absent() {
			m.printf("No saved %s found in %s, starting empty.\n", d.Name, d.Store.StoreName())
		}
	}

	top := []action{
		{"Notes", m.notesMenu},
		{"Tasks", m.tasksMenu},
		{"Contacts", m.contactsMenu},
		{"Finance", m.financeMenu},
		{"Calculator", m.calcMenu},
	}
	err := m.choose(ctx, "Main menu", top, "Exit")
	if err == nil || errors.Is(err, io.EOF) {
		m.println("Goodbye!")
		return nil
	}
	return err
}

// choose prints actions followed by a closing entry labelled last and runs
// the selected action. It returns nil when the closing entry is chosen.
func (m *Menu) choose(ctx context.Context, title string, actions []action, last string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printf("\n%s:\n", title)
		for i, a := range actions {
			m.printf("%d. %s\n", i+1, a.label)
		}
		m.printf("%d. %s\n", len(actions)+1, last)

		choice, err := m.prompt("Choose an action: ")
		if err != nil {
			return err
		}
		n, convErr := strconv.Atoi(choice)
		switch {
		case convErr != nil || n < 1 || n > len(actions)+1:
			m.println("Invalid choice, try again.")
		case n == len(actions)+1:
			return nil
		default:
			if err := actions[n-1].run(ctx); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
					return err
				}
				m.fail(err)
			}
		}
	}
}

// prompt prints label and returns the next input line without surrounding
// blanks. It returns io.EOF once input is exhausted.
func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		fmt.Fprintln(m.out)
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

// promptID reads a numeric identifier.
func (m *Menu) promptID(label string) (int, error) {
	raw, err := m.prompt(label)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("id %q is not a number", raw)
	}
	return id, nil
}

// promptFields asks for each named field and keeps only the answered ones,
// so an empty answer leaves the field unchanged.
func (m *Menu) promptFields(fields ...[2]string) (map[string]string, error) {
	answers := make(map[string]string, len(fields))
	for _, f := range fields {
		v, err := m.prompt(f[1] + " (Enter to keep): ")
		if err != nil {
			return nil, err
		}
		if v != "" {
			answers[f[0]] = v
		}
	}
	return answers, nil
}

// printMarkdown renders markdown and falls back to the raw text when
// rendering fails.
func (m *Menu) printMarkdown(markdown string) {
	out, err := m.render(markdown)
	if err != nil {
		out = markdown
	}
	m.println(strings.TrimRight(out, "\n"))
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) fail(err error) {
	m.printf("Error: %v\n", err)
}
