package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/assistant/internal/date"
	"github.com/starford/assistant/internal/finance"
	"github.com/starford/assistant/internal/models"
)

func (m *Menu) financeMenu(ctx context.Context) error {
	return m.choose(ctx, "Finance", []action{
		{"Add a record", m.addRecord},
		{"List records", m.listRecords},
		{"Report for a period", m.financeReport},
		{"Overall balance", m.financeBalance},
		{"Edit a record", m.editRecord},
		{"Delete a record", m.deleteRecord},
		{"Import from CSV", m.importer(m.ws.Finance.Import, "records")},
		{"Export to CSV", m.exporter(m.ws.Finance.Export)},
	}, "Back to main menu")
}

func (m *Menu) addRecord(context.Context) error {
	amount, err := m.prompt("Amount (positive for income, negative for expense): ")
	if err != nil {
		return err
	}
	category, err := m.prompt("Category: ")
	if err != nil {
		return err
	}
	day, err := m.prompt("Date (DD-MM-YYYY): ")
	if err != nil {
		return err
	}
	description, err := m.prompt("Description: ")
	if err != nil {
		return err
	}
	r, err := m.ws.Finance.Add(amount, category, day, description)
	if err != nil {
		return err
	}
	m.printf("Record %d added.\n", r.ID)
	return nil
}

func (m *Menu) listRecords(context.Context) error {
	var f finance.Filter
	until, err := m.prompt("Up to date (DD-MM-YYYY, Enter for all): ")
	if err != nil {
		return err
	}
	if until != "" {
		d, err := date.Parse(until)
		if err != nil {
			return err
		}
		f.Until = &d
	}
	category, err := m.prompt("Category (Enter for all): ")
	if err != nil {
		return err
	}
	if category != "" {
		f.Category = &category
	}

	list := m.ws.Finance.List(f)
	if len(list) == 0 {
		m.println("No matching records.")
		return nil
	}
	for _, r := range list {
		line := fmt.Sprintf("%d. %s %s [%s]", r.ID, r.Date, finance.FormatAmount(r.Amount, m.currency), r.Category)
		if r.Description != "" {
			line += " " + r.Description
		}
		m.println(line)
	}
	return nil
}

func (m *Menu) financeReport(context.Context) error {
	rawStart, err := m.prompt("Start date (DD-MM-YYYY): ")
	if err != nil {
		return err
	}
	start, err := date.Parse(rawStart)
	if err != nil {
		return err
	}
	rawEnd, err := m.prompt("End date (DD-MM-YYYY): ")
	if err != nil {
		return err
	}
	end, err := date.Parse(rawEnd)
	if err != nil {
		return err
	}
	m.printMarkdown(m.reportMarkdown(m.ws.Finance.Report(start, end)))
	return nil
}

func (m *Menu) reportMarkdown(r finance.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Report %s to %s\n\n", r.Start, r.End)
	m.writeTotals(&b, r.Totals)
	if len(r.Categories) > 0 {
		b.WriteString("\n## By category\n\n")
		for _, c := range r.Categories {
			fmt.Fprintf(&b, "- %s: %s\n", c.Category, finance.FormatAmount(c.Amount, m.currency))
		}
	}
	return b.String()
}

func (m *Menu) writeTotals(b *strings.Builder, t finance.Totals) {
	fmt.Fprintf(b, "- Income: %s\n", finance.FormatAmount(t.Income, m.currency))
	fmt.Fprintf(b, "- Expenses: %s\n", finance.FormatAmount(t.Expenses, m.currency))
	fmt.Fprintf(b, "- Balance: %s\n", finance.FormatAmount(t.Balance, m.currency))
}

func (m *Menu) financeBalance(context.Context) error {
	var b strings.Builder
	b.WriteString("# Overall balance\n\n")
	m.writeTotals(&b, m.ws.Finance.Balance())
	m.printMarkdown(b.String())
	return nil
}

func (m *Menu) editRecord(context.Context) error {
	id, err := m.promptID("Record ID: ")
	if err != nil {
		return err
	}
	fields, err := m.promptFields(
		[2]string{"amount", "New amount"},
		[2]string{"category", "New category"},
		[2]string{"date", "New date (DD-MM-YYYY)"},
		[2]string{"description", "New description"},
	)
	if err != nil {
		return err
	}
	patch, err := models.FinancePatchFromFields(fields)
	if err != nil {
		return err
	}
	if _, err := m.ws.Finance.Edit(id, patch); err != nil {
		return err
	}
	m.println("Record updated.")
	return nil
}

func (m *Menu) deleteRecord(context.Context) error {
	id, err := m.promptID("Record ID: ")
	if err != nil {
		return err
	}
	if err := m.ws.Finance.Delete(id); err != nil {
		return err
	}
	m.println("Record deleted.")
	return nil
}
