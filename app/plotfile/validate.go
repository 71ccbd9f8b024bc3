package plotfile

import "math"

// padded holds the argument and color lists stretched to the series count,
// and the bar width after clamping.
type padded struct {
	arguments []string
	colors    []string
	barWidth  float64
}

func validateAndPad(t *DataTable, d Directives, args []string, defaultColor string) (padded, error) {
	n := t.Columns()
	if n <= 0 {
		return padded{}, &EmptyTableError{}
	}
	return padded{
		arguments: padTo(args, n, ""),
		colors:    padTo(d.Colors, n, defaultColor),
		barWidth:  ClampBarWidth(d.BarWidth, n),
	}, nil
}

// padTo returns a copy of list extended with fill up to n entries. A list
// that is already long enough is copied unchanged.
func padTo(list []string, n int, fill string) []string {
	out := make([]string, len(list), max(n, len(list)))
	copy(out, list)
	for len(out) < n {
		out = append(out, fill)
	}
	return out
}

// ClampBarWidth limits width so that n bars fit side by side in one
// unit-wide category slot with a bar's worth of margin.
func ClampBarWidth(width float64, n int) float64 {
	return math.Min(width, 1/float64(n+1))
}
