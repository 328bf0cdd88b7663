// Package date provides the day-granularity Date used by tasks and finance records,
// and the timestamp format used by notes.
package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/starford/assistant/internal/apperr"
)

// readFormat is permissive and accepts single-digit days and months ("1-2-2024").
const readFormat = "2-1-2006"

// Format is the canonical DD-MM-YYYY representation written to disk and CSV.
const Format = "02-01-2006"

// StampFormat is the note timestamp format (DD-MM-YYYY HH:MM:SS).
const StampFormat = "02-01-2006 15:04:05"

// Date represents a calendar day with no time of day.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Of truncates t to its calendar day.
func Of(t time.Time) Date { return New(t.Date()) }

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// String formats d as DD-MM-YYYY.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(Format)
}

// Parse reads a DD-MM-YYYY date. Surrounding blanks are ignored.
func Parse(s string) (Date, error) {
	t, err := time.Parse(readFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q, want DD-MM-YYYY", apperr.ErrMalformedInput, s)
	}
	return Of(t), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// MarshalJSON encodes d as a DD-MM-YYYY string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a DD-MM-YYYY string. An empty string yields the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Stamp formats t as a note timestamp.
func Stamp(t time.Time) string { return t.Format(StampFormat) }
