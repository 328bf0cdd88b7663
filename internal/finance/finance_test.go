package finance

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/assistant/internal/apperr"
	"github.com/starford/assistant/internal/date"
	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/storage"
	"github.com/starford/assistant/internal/tabular"
)

func newManager(t *testing.T) (*Manager, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)
	m, err := New(store, DefaultStore, nil)
	require.NoError(t, err)
	return m, store
}

func seed(t *testing.T, m *Manager) {
	t.Helper()
	for _, in := range [][4]string{
		{"100", "salary", "01-03-2024", "march pay"},
		{"-40", "food", "05-03-2024", "groceries"},
		{"10", "salary", "20-03-2024", "bonus"},
		{"-15.50", "food", "02-04-2024", "lunch"},
	} {
		_, err := m.Add(in[0], in[1], in[2], in[3])
		require.NoError(t, err)
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "got %s, want %s", got, want)
}

func TestReportInclusiveRange(t *testing.T) {
	m, _ := newManager(t)
	seed(t, m)

	r := m.Report(date.MustParse("01-03-2024"), date.MustParse("20-03-2024"))

	assertDecimal(t, "110", r.Income)
	assertDecimal(t, "-40", r.Expenses)
	assertDecimal(t, "70", r.Balance)
	require.Len(t, r.Categories, 2)
	assert.Equal(t, "salary", r.Categories[0].Category)
	assertDecimal(t, "110", r.Categories[0].Amount)
	assert.Equal(t, "food", r.Categories[1].Category)
	assertDecimal(t, "-40", r.Categories[1].Amount)
}

func TestReportEmptyRange(t *testing.T) {
	m, _ := newManager(t)
	seed(t, m)

	r := m.Report(date.MustParse("01-01-2020"), date.MustParse("31-12-2020"))
	assert.True(t, r.Balance.IsZero())
	assert.Empty(t, r.Categories)
}

func TestBalanceCoversEverything(t *testing.T) {
	m, _ := newManager(t)
	seed(t, m)

	b := m.Balance()
	assertDecimal(t, "110", b.Income)
	assertDecimal(t, "-55.5", b.Expenses)
	assertDecimal(t, "54.5", b.Balance)
}

func TestListFilters(t *testing.T) {
	m, _ := newManager(t)
	seed(t, m)

	food := "food"
	until := date.MustParse("05-03-2024")

	assert.Len(t, m.List(Filter{}), 4)
	assert.Len(t, m.List(Filter{Category: &food}), 2)
	assert.Len(t, m.List(Filter{Until: &until}), 2)

	got := m.List(Filter{Category: &food, Until: &until})
	require.Len(t, got, 1)
	assert.Equal(t, "groceries", got[0].Description)
}

func TestAddRejectsBadInput(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Add("ten", "x", "01-01-2024", "")
	assert.ErrorIs(t, err, apperr.ErrMalformedInput)
	_, err = m.Add("10", "x", "yesterday", "")
	assert.ErrorIs(t, err, apperr.ErrMalformedInput)
	assert.True(t, m.Absent())
}

func TestEditAndDelete(t *testing.T) {
	m, store := newManager(t)
	seed(t, m)

	patch, err := models.FinancePatchFromFields(map[string]string{"amount": "-45", "note": "ignored"})
	require.NoError(t, err)
	r, err := m.Edit(2, patch)
	require.NoError(t, err)
	assertDecimal(t, "-45", r.Amount)
	assert.Equal(t, "food", r.Category)

	require.NoError(t, m.Delete(1))
	_, err = m.Get(1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, m.Delete(1), apperr.ErrNotFound)

	data, err := store.Read(DefaultStore)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 3)
	assert.Equal(t, float64(2), raw[0]["record_id"])
	assert.Equal(t, "-45", raw[0]["amount"])
	assert.Equal(t, "05-03-2024", raw[0]["date"])
}

func TestExportImportRoundTrip(t *testing.T) {
	src, _ := newManager(t)
	seed(t, src)

	path := filepath.Join(t.TempDir(), "finance.csv")
	require.NoError(t, src.Export(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "record_id,amount,category,date,description\n1,100,salary,01-03-2024,march pay\n")

	dst, _ := newManager(t)
	n, err := dst.Import(path)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, src.Balance(), dst.Balance())
	assert.Equal(t, src.List(Filter{}), dst.List(Filter{}))
}

func TestImportReportsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	src := "record_id,amount,category,date,description\n" +
		"1,12,a,01-01-2024,\n" +
		"2,twelve,a,01-01-2024,\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	m, _ := newManager(t)
	_, err := m.Import(path)
	var ie *tabular.ImportError
	require.ErrorAs(t, err, &ie)
	require.Len(t, ie.Rows, 1)
	assert.Equal(t, 2, ie.Rows[0].Row)
	assert.Empty(t, m.List(Filter{}))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$110.00", FormatAmount(decimal.RequireFromString("110"), "USD"))
	assert.Equal(t, "-$40.50", FormatAmount(decimal.RequireFromString("-40.5"), "USD"))
	assert.True(t, KnownCurrency("EUR"))
	assert.False(t, KnownCurrency("XXZ"))
}

func TestTotalsFormat(t *testing.T) {
	m, _ := newManager(t)
	seed(t, m)

	f := m.Balance().Format("USD")
	assert.Equal(t, FormattedTotals{Income: "$110.00", Expenses: "-$55.50", Balance: "$54.50"}, f)
}
