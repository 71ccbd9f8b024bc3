package plotfile

import (
	"math"
	"strconv"
	"strings"
)

// DataTable maps row labels to value vectors. Rows keep the order in which
// they were first read, and every row has the same number of columns.
type DataTable struct {
	labels  []string
	rows    [][]float64
	index   map[string]int
	columns int
}

func newDataTable() *DataTable {
	return &DataTable{index: make(map[string]int)}
}

// Len returns the number of rows.
func (t *DataTable) Len() int {
	return len(t.labels)
}

// Columns returns the shared row length, which is the series count.
func (t *DataTable) Columns() int {
	return t.columns
}

// Labels returns the row labels in insertion order.
func (t *DataTable) Labels() []string {
	return append([]string(nil), t.labels...)
}

// Row returns the values stored under label.
func (t *DataTable) Row(label string) ([]float64, bool) {
	i, ok := t.index[label]
	if !ok {
		return nil, false
	}
	return t.rows[i], true
}

func (t *DataTable) add(label string, values []float64) {
	if len(t.labels) == 0 {
		t.columns = len(values)
	}
	t.index[label] = len(t.labels)
	t.labels = append(t.labels, label)
	t.rows = append(t.rows, values)
}

// parseDataTable consumes every remaining line as "<label> <v1> ... <vN>".
func parseDataTable(lr *lineReader) (*DataTable, error) {
	t := newDataTable()
	for {
		line, ok := lr.next()
		if !ok {
			return t, lr.err()
		}
		if isBlank(line) {
			continue
		}

		fields := strings.Fields(line)
		label, tokens := fields[0], fields[1:]
		if _, dup := t.index[label]; dup {
			return nil, &DuplicateLabelError{Label: label, Line: lr.line}
		}
		if t.Len() > 0 && len(tokens) != t.columns {
			return nil, &InconsistentColumnCountError{
				Label:    label,
				Expected: t.columns,
				Actual:   len(tokens),
				Line:     lr.line,
			}
		}

		values := make([]float64, len(tokens))
		for i, tok := range tokens {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &MalformedNumberError{Label: label, Token: tok, Line: lr.line}
			}
			values[i] = v
		}
		t.add(label, values)
	}
}
