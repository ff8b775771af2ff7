package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when sniffing and parsing date cells.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan-2006",
}

// FromCSV reads CSV bytes into an immutable Table. The first record is the
// header. Each column's type is sniffed from its cells:
//
//   - all cells parse as float   → Number / Numerical
//   - all cells parse as a date  → Date / Temporal
//   - all cells are true/false   → Boolean / Categorical
//   - otherwise                  → String / Categorical
//
// Empty cells become null and do not vote during sniffing. Sniffing is for
// drivers and tests; in hosted use the caller supplies column metadata via
// NewTable and the core never parses raw files.
func FromCSV(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read csv header: %w", err)
	}

	var cells [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read csv row %d: %w", len(cells)+2, err)
		}
		cells = append(cells, rec)
	}

	columns := make([]Column, len(header))
	for j, h := range header {
		columns[j] = sniffColumn(strings.TrimSpace(h), columnCells(cells, j))
	}

	rows := make([]Row, len(cells))
	for i, rec := range cells {
		row := make(Row, len(columns))
		for j, col := range columns {
			if j >= len(rec) {
				row[col.Name] = Null()
				continue
			}
			row[col.Name] = parseCell(rec[j], col.Type)
		}
		rows[i] = row
	}

	return NewTable(name, columns, rows), nil
}

func columnCells(cells [][]string, j int) []string {
	out := make([]string, 0, len(cells))
	for _, rec := range cells {
		if j < len(rec) {
			out = append(out, rec[j])
		}
	}

	return out
}

// sniffColumn classifies one column from its raw cells.
func sniffColumn(name string, raw []string) Column {
	isNum, isDate, isBool := true, true, true
	voted := false
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		voted = true
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			isNum = false
		}
		if !parseableDate(s) {
			isDate = false
		}
		if !strings.EqualFold(s, "true") && !strings.EqualFold(s, "false") {
			isBool = false
		}
	}

	col := Column{Name: name, Type: TypeString, Kind: KindCategorical}
	switch {
	case !voted:
		// All empty: leave as categorical string.
	case isNum:
		col.Type, col.Kind = TypeNumber, KindNumerical
	case isDate:
		col.Type, col.Kind = TypeDate, KindTemporal
	case isBool:
		col.Type, col.Kind = TypeBoolean, KindCategorical
	}

	return col
}

func parseableDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}

	return false
}

// parseCell converts one raw cell into a Value of the sniffed column type.
// Cells that fail to parse under the column type degrade to string rather
// than erroring, so one dirty cell cannot abort ingestion.
func parseCell(s string, typ Type) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null()
	}
	switch typ {
	case TypeNumber:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Number(f)
		}
	case TypeDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Date(t)
			}
		}
	case TypeBoolean:
		if b, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
			return Boolean(b)
		}
	}

	return String(s)
}
