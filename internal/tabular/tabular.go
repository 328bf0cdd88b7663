// Package tabular reads and writes the CSV interchange files used for export and import.
//
// Each record type supplies a Codec with its fixed column order. Export always writes
// that order; import maps columns by header name, so a spreadsheet that reorders
// columns still imports, but every codec column must be present.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/starford/assistant/internal/apperr"
)

// Codec converts records of type T to and from CSV rows.
type Codec[T any] struct {
	Header []string
	Encode func(T) []string
	// Decode receives the row keyed by header name.
	Decode func(row map[string]string) (T, error)
}

// RowError describes one data row that failed to decode. Row is 1-based and
// does not count the header.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// ImportError lists every malformed row of an import. It matches
// apperr.ErrMalformedInput under errors.Is.
type ImportError struct {
	Path string
	Rows []RowError
}

func (e *ImportError) Error() string {
	parts := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		parts[i] = r.Error()
	}
	return fmt.Sprintf("import %s: %d malformed row(s): %s", e.Path, len(e.Rows), strings.Join(parts, "; "))
}

func (e *ImportError) Unwrap() error { return apperr.ErrMalformedInput }

// Export writes header and one row per record to path, replacing any existing file.
func Export[T any](path string, codec Codec[T], recs []T) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tabular: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("tabular: close %s: %w", path, cerr)
		}
	}()
	return Write(f, codec, recs)
}

// Write encodes recs as CSV to w.
func Write[T any](w io.Writer, codec Codec[T], recs []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(codec.Header); err != nil {
		return fmt.Errorf("tabular: write header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write(codec.Encode(r)); err != nil {
			return fmt.Errorf("tabular: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("tabular: flush: %w", err)
	}
	return nil
}

// Import reads every row of the CSV file at path. A missing file yields an error
// matching apperr.ErrFileAbsent. When any row fails to decode, no records are
// returned and the error is an *ImportError listing all failing rows.
func Import[T any](path string, codec Codec[T]) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("tabular: %s: %w", path, apperr.ErrFileAbsent)
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: open %s: %w", path, err)
	}
	defer f.Close()

	recs, err := Read(f, codec)
	var ie *ImportError
	if errors.As(err, &ie) {
		ie.Path = path
	}
	return recs, err
}

// Read decodes CSV from r. See Import for the error contract.
func Read[T any](r io.Reader, codec Codec[T]) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("tabular: %w: empty file, want header %s", apperr.ErrMalformedInput, strings.Join(codec.Header, ","))
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: %w: header: %v", apperr.ErrMalformedInput, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, h := range codec.Header {
		if _, ok := pos[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("tabular: %w: missing column(s) %s", apperr.ErrMalformedInput, strings.Join(missing, ", "))
	}

	var (
		out  []T
		bad  []RowError
		rowN int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowN++
		if err != nil {
			return nil, fmt.Errorf("tabular: %w: row %d: %v", apperr.ErrMalformedInput, rowN, err)
		}
		if len(row) != len(header) {
			bad = append(bad, RowError{Row: rowN, Err: fmt.Errorf("has %d fields, want %d", len(row), len(header))})
			continue
		}
		fields := make(map[string]string, len(codec.Header))
		for _, h := range codec.Header {
			fields[h] = row[pos[h]]
		}
		rec, err := codec.Decode(fields)
		if err != nil {
			bad = append(bad, RowError{Row: rowN, Err: err})
			continue
		}
		out = append(out, rec)
	}
	if len(bad) > 0 {
		return nil, &ImportError{Rows: bad}
	}
	return out, nil
}
