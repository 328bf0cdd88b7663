package models

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/assistant/internal/apperr"
	"github.com/starford/assistant/internal/date"
)

func TestParsePriority(t *testing.T) {
	cases := map[string]Priority{
		"1":       PriorityHigh,
		"2":       PriorityMedium,
		"3":       PriorityLow,
		"HIGH":    PriorityHigh,
		" low ":   PriorityLow,
		"Medium":  PriorityMedium,
		"Высокий": PriorityHigh,
		"Средний": PriorityMedium,
		"Низкий":  PriorityLow,
	}
	for in, want := range cases {
		got, err := ParsePriority(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePriority("urgent")
	assert.ErrorIs(t, err, apperr.ErrMalformedInput)
}

func TestPrioritiesMatchMenuDigits(t *testing.T) {
	for i, p := range Priorities {
		got, err := ParsePriority(strconv.Itoa(i + 1))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestTaskJSONAcceptsLegacyPriority(t *testing.T) {
	raw := `{"task_id":3,"title":"t","description":"d","done":true,"priority":"Низкий","due_date":"01-02-2024"}`
	var task Task
	require.NoError(t, json.Unmarshal([]byte(raw), &task))
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, date.MustParse("01-02-2024"), task.DueDate)
	assert.True(t, task.Done)
}

func TestFinanceRecordJSON(t *testing.T) {
	rec := FinanceRecord{ID: 1, Amount: decimal.RequireFromString("-40.50"), Category: "food", Date: date.MustParse("03-03-2024")}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"record_id":1,"amount":"-40.5","category":"food","date":"03-03-2024","description":""}`, string(data))

	var back FinanceRecord
	require.NoError(t, json.Unmarshal([]byte(`{"record_id":2,"amount":100,"category":"pay","date":"01-03-2024","description":"x"}`), &back))
	assert.True(t, back.Amount.Equal(decimal.NewFromInt(100)))
}

func TestContactMatches(t *testing.T) {
	c := Contact{Name: "Ann", Phone: "555"}
	assert.True(t, c.Matches("Ann"))
	assert.True(t, c.Matches("555"))
	assert.False(t, c.Matches("ann"))
}

func TestTaskPatchFromFieldsIgnoresUnknownKeys(t *testing.T) {
	p, err := TaskPatchFromFields(map[string]string{
		"title":    "new",
		"priority": "2",
		"colour":   "blue",
	})
	require.NoError(t, err)

	task := Task{ID: 1, Title: "old", Description: "keep", Priority: PriorityHigh, DueDate: date.MustParse("01-01-2024")}
	p.Apply(&task)
	assert.Equal(t, Task{ID: 1, Title: "new", Description: "keep", Priority: PriorityMedium, DueDate: date.MustParse("01-01-2024")}, task)
}

func TestTaskPatchFromFieldsRejectsBadDate(t *testing.T) {
	_, err := TaskPatchFromFields(map[string]string{"due_date": "2024/01/01"})
	assert.ErrorIs(t, err, apperr.ErrMalformedInput)
}

func TestFinancePatchFromFields(t *testing.T) {
	p, err := FinancePatchFromFields(map[string]string{"amount": "-12.5", "category": "fun"})
	require.NoError(t, err)
	rec := FinanceRecord{ID: 4, Amount: decimal.NewFromInt(1), Category: "misc", Description: "d"}
	p.Apply(&rec)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("-12.5")))
	assert.Equal(t, "fun", rec.Category)
	assert.Equal(t, "d", rec.Description)

	_, err = FinancePatchFromFields(map[string]string{"amount": "lots"})
	assert.ErrorIs(t, err, apperr.ErrMalformedInput)
}

func TestNoteAndContactPatches(t *testing.T) {
	n := Note{Title: "a", Content: "b"}
	NotePatchFromFields(map[string]string{"content": "c", "tags": "x"}).Apply(&n)
	assert.Equal(t, Note{Title: "a", Content: "c"}, n)

	c := Contact{Name: "Bob", Phone: "1", Email: "b@x"}
	ContactPatchFromFields(map[string]string{"email": "bob@y"}).Apply(&c)
	assert.Equal(t, Contact{Name: "Bob", Phone: "1", Email: "bob@y"}, c)
}
