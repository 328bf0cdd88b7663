package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/starford/assistant/internal/apperr"
	"github.com/starford/assistant/internal/date"
)

// Patches carry only the fields an edit changes; a nil field is left untouched.
// The FromFields constructors coerce string values and ignore keys that name
// no field, so callers may pass a loosely built map without pre-filtering it.

// NotePatch is a partial update of a Note.
type NotePatch struct {
	Title   *string
	Content *string
}

// Apply writes the set fields into n.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
}

// NotePatchFromFields builds a NotePatch from "title" and "content".
func NotePatchFromFields(fields map[string]string) NotePatch {
	var p NotePatch
	if v, ok := fields["title"]; ok {
		p.Title = &v
	}
	if v, ok := fields["content"]; ok {
		p.Content = &v
	}
	return p
}

// TaskPatch is a partial update of a Task. Done is changed through MarkDone only.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *date.Date
}

// Apply writes the set fields into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
}

// TaskPatchFromFields builds a TaskPatch from "title", "description",
// "priority" and "due_date".
func TaskPatchFromFields(fields map[string]string) (TaskPatch, error) {
	var p TaskPatch
	if v, ok := fields["title"]; ok {
		p.Title = &v
	}
	if v, ok := fields["description"]; ok {
		p.Description = &v
	}
	if v, ok := fields["priority"]; ok {
		pr, err := ParsePriority(v)
		if err != nil {
			return TaskPatch{}, err
		}
		p.Priority = &pr
	}
	if v, ok := fields["due_date"]; ok {
		d, err := date.Parse(v)
		if err != nil {
			return TaskPatch{}, err
		}
		p.DueDate = &d
	}
	return p, nil
}

// ContactPatch is a partial update of a Contact.
type ContactPatch struct {
	Name  *string
	Phone *string
	Email *string
}

// Apply writes the set fields into c.
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
}

// ContactPatchFromFields builds a ContactPatch from "name", "phone" and "email".
func ContactPatchFromFields(fields map[string]string) ContactPatch {
	var p ContactPatch
	if v, ok := fields["name"]; ok {
		p.Name = &v
	}
	if v, ok := fields["phone"]; ok {
		p.Phone = &v
	}
	if v, ok := fields["email"]; ok {
		p.Email = &v
	}
	return p
}

// FinancePatch is a partial update of a FinanceRecord.
type FinancePatch struct {
	Amount      *decimal.Decimal
	Category    *string
	Date        *date.Date
	Description *string
}

// Apply writes the set fields into r.
func (p FinancePatch) Apply(r *FinanceRecord) {
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
}

// FinancePatchFromFields builds a FinancePatch from "amount", "category",
// "date" and "description".
func FinancePatchFromFields(fields map[string]string) (FinancePatch, error) {
	var p FinancePatch
	if v, ok := fields["amount"]; ok {
		a, err := ParseAmount(v)
		if err != nil {
			return FinancePatch{}, err
		}
		p.Amount = &a
	}
	if v, ok := fields["category"]; ok {
		p.Category = &v
	}
	if v, ok := fields["date"]; ok {
		d, err := date.Parse(v)
		if err != nil {
			return FinancePatch{}, err
		}
		p.Date = &d
	}
	if v, ok := fields["description"]; ok {
		p.Description = &v
	}
	return p, nil
}

// ParseAmount reads a signed decimal amount such as "-40" or "12.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	a, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid amount %q", apperr.ErrMalformedInput, s)
	}
	return a, nil
}
