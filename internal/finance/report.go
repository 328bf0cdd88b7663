package finance

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/starford/assistant/internal/date"
	"github.com/starford/assistant/internal/models"
)

// Totals splits a set of records into income and expenses. Expenses is zero
// or negative and Balance is Income + Expenses.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// CategoryTotal is the signed sum of one category's records.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Report is the summary of a date range.
type Report struct {
	Start  date.Date `json:"start"`
	End    date.Date `json:"end"`
	Totals `json:"totals"`
	// Categories lists every category present in the range once, in order of
	// first appearance.
	Categories []CategoryTotal `json:"categories"`
}

func totals(recs []models.FinanceRecord) Totals {
	t := Totals{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, r := range recs {
		switch {
		case r.Amount.IsPositive():
			t.Income = t.Income.Add(r.Amount)
		case r.Amount.IsNegative():
			t.Expenses = t.Expenses.Add(r.Amount)
		}
	}
	t.Balance = t.Income.Add(t.Expenses)
	return t
}

func byCategory(recs []models.FinanceRecord) []CategoryTotal {
	out := []CategoryTotal{}
	pos := map[string]int{}
	for _, r := range recs {
		i, ok := pos[r.Category]
		if !ok {
			i = len(out)
			pos[r.Category] = i
			out = append(out, CategoryTotal{Category: r.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(r.Amount)
	}
	return out
}

// FormatAmount renders d in the given ISO 4217 currency, for example
// "-$40.00" for USD. Amounts are rounded to the currency's minor unit.
func FormatAmount(d decimal.Decimal, currency string) string {
	// money.New always yields a non-nil currency, even for unknown codes.
	cur := money.New(0, currency).Currency()
	minor := d.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// KnownCurrency reports whether code is a currency FormatAmount can render.
func KnownCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// FormattedTotals holds Totals rendered in one currency.
type FormattedTotals struct {
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Balance  string `json:"balance"`
}

// Format renders every total with FormatAmount.
func (t Totals) Format(currency string) FormattedTotals {
	return FormattedTotals{
		Income:   FormatAmount(t.Income, currency),
		Expenses: FormatAmount(t.Expenses, currency),
		Balance:  FormatAmount(t.Balance, currency),
	}
}
