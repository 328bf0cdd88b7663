package menu

import (
	"context"
	"strconv"

	"github.com/starford/assistant/internal/calculator"
)

func (m *Menu) calcMenu(ctx context.Context) error {
	return m.choose(ctx, "Calculator", []action{
		{"Evaluate an expression", m.evaluate},
	}, "Back to main menu")
}

func (m *Menu) evaluate(context.Context) error {
	expr, err := m.prompt("Expression (for example 2*2): ")
	if err != nil {
		return err
	}
	v, err := calculator.Evaluate(expr)
	if err != nil {
		return err
	}
	m.printf("Result: %s\n", strconv.FormatFloat(v, 'g', -1, 64))
	return nil
}
