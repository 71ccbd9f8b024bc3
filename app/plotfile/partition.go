package plotfile

// partitioned is the column-major view of a DataTable.
type partitioned struct {
	categories []string
	indices    []int
	series     [][]float64
}

// partition transposes t so that series[c][r] is column c of row r, rows
// taken in table order.
func partition(t *DataTable) partitioned {
	rows := t.Len()
	p := partitioned{
		categories: t.Labels(),
		indices:    make([]int, rows),
		series:     make([][]float64, t.Columns()),
	}
	for c := range p.series {
		p.series[c] = make([]float64, rows)
	}
	for r, row := range t.rows {
		p.indices[r] = r
		for c, v := range row {
			p.series[c][r] = v
		}
	}
	return p
}
