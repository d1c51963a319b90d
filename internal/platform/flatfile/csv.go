package flatfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ems/internal/domain/ledger"
)

type table struct {
	name   string
	header map[string]int
	rows   []row
}

type row struct {
	line   int
	fields []string
}

// readTable loads a CSV file keyed by its header. A missing file is an empty
// table; a missing required column fails the whole file.
func readTable(path string, required []string) (*table, error) {
	t := &table{name: filepath.Base(path), header: map[string]int{}}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return nil, fmt.Errorf("open %s: %w", t.name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", t.name, err)
	}
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, dup := t.header[col]; !dup {
			t.header[col] = i
		}
	}
	for _, col := range required {
		if _, ok := t.header[col]; !ok {
			return nil, &ledger.FieldError{Field: col, Reason: "column missing in " + t.name}
		}
	}

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				slog.Warn("skipping unreadable row", "file", t.name, "line", parseErr.Line, "err", err)
				continue
			}
			return nil, fmt.Errorf("read %s: %w", t.name, err)
		}
		line, _ := reader.FieldPos(0)
		t.rows = append(t.rows, row{line: line, fields: fields})
	}
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.header[col]
	return ok
}

func (t *table) get(r row, col string) string {
	i, ok := t.header[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// first returns the first non-empty value among cols.
func (t *table) first(r row, cols ...string) string {
	for _, col := range cols {
		if v := t.get(r, col); v != "" {
			return v
		}
	}
	return ""
}

func (t *table) skip(r row, err error) {
	slog.Warn("skipping malformed row", "file", t.name, "line", r.line, "err", err)
}

// WriteTable writes header and rows to path through a temp file and rename.
func WriteTable(path string, columns []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func parseFloat(field, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

// parseInt accepts integral floats such as "2025.0".
func parseInt(field, raw string) (int, error) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%s: invalid integer %q", field, raw)
	}
	return int(f), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
