// Package calculator evaluates single-operator arithmetic expressions such as
// "6 / 3". There is no precedence and no parenthesization: the expression is
// split at the first operator found when checking + - * / in that order, and
// that operator must occur exactly once. An operand that itself contains an
// operator, including a leading minus sign, therefore fails to parse.
package calculator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/assistant/internal/apperr"
)

// Operators in the order they are looked for.
var Operators = []string{"+", "-", "*", "/"}

// Evaluate computes expr. Whitespace anywhere in expr is ignored.
func Evaluate(expr string) (float64, error) {
	compact := strings.Join(strings.Fields(expr), "")
	for _, op := range Operators {
		parts := strings.Split(compact, op)
		if len(parts) == 1 {
			continue
		}
		if len(parts) != 2 {
			return 0, fmt.Errorf("%w: %q must appear once in %q", apperr.ErrMalformedInput, op, expr)
		}
		a, err := operand(parts[0])
		if err != nil {
			return 0, err
		}
		b, err := operand(parts[1])
		if err != nil {
			return 0, err
		}
		return apply(op, a, b)
	}
	return 0, fmt.Errorf("%w: no operator in %q", apperr.ErrMalformedInput, expr)
}

func operand(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid operand %q", apperr.ErrMalformedInput, s)
	}
	return v, nil
}

func apply(op string, a, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	default:
		if b == 0 {
			return 0, apperr.ErrDivisionByZero
		}
		return a / b, nil
	}
}
