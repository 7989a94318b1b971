// Package nbastats is a client for the stats.nba.com JSON API: scoreboard,
// rosters, game logs and box scores. Responses arrive as named result sets of
// parallel header/row arrays; Table gives columnar access to one of them.
package nbastats

import (
	"fmt"
	"strconv"
)

// Table is one result set: a header row plus data rows. Cells are the raw
// decoded JSON values (string, float64 or nil).
type Table struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rowSet"`
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// IsEmpty reports whether the table has no data rows.
func (t Table) IsEmpty() bool { return len(t.Rows) == 0 }

// Column returns the index of the named header, or -1 when absent.
func (t Table) Column(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Cell returns the raw value at (row, header). Missing header or out-of-range
// row yields nil.
func (t Table) Cell(row int, header string) any {
	col := t.Column(header)
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][col]
}

// String renders the cell at (row, header) as text. Numeric cells drop a
// trailing ".0" so ids round-trip cleanly.
func (t Table) String(row int, header string) string {
	switch v := t.Cell(row, header).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int renders the cell at (row, header) as an integer, zero when the cell is
// missing or not numeric.
func (t Table) Int(row int, header string) int {
	switch v := t.Cell(row, header).(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// Float renders the cell at (row, header) as a float64, zero when the cell is
// missing or not numeric.
func (t Table) Float(row int, header string) float64 {
	switch v := t.Cell(row, header).(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// WithColumn returns a copy of the table with an extra column holding the
// same value on every row. Game logs use it to tag rows with the season type
// they came from before tables are merged.
func (t Table) WithColumn(header, value string) Table {
	out := Table{
		Name:    t.Name,
		Headers: append(append([]string(nil), t.Headers...), header),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append(append([]any(nil), row...), value)
	}
	return out
}

// Append concatenates other's rows onto t. Both tables must share headers;
// mismatched shapes are an error.
func (t Table) Append(other Table) (Table, error) {
	if len(t.Headers) == 0 {
		return other, nil
	}
	if len(other.Headers) != len(t.Headers) {
		return Table{}, fmt.Errorf("nbastats: cannot append table %q: %d headers vs %d", other.Name, len(other.Headers), len(t.Headers))
	}
	out := t
	out.Rows = append(append([][]any(nil), t.Rows...), other.Rows...)
	return out, nil
}

type apiResponse struct {
	Resource   string  `json:"resource"`
	ResultSets []Table `json:"resultSets"`
}

// resultSet picks a named result set from a response, falling back to the
// positional index when the name is absent (some endpoints omit names).
func (r apiResponse) resultSet(name string, index int) (Table, error) {
	for _, rs := range r.ResultSets {
		if rs.Name == name {
			return rs, nil
		}
	}
	if index >= 0 && index < len(r.ResultSets) {
		return r.ResultSets[index], nil
	}
	return Table{}, fmt.Errorf("nbastats: response %s has no result set %q", r.Resource, name)
}
