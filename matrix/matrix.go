// Package matrix implements a ragged 2-D matrix of uniform-type scalars,
// used to back per-variable-per-term values (membership grids, hit
// counters) throughout package fuzzy. Missing cells read as the type's
// zero value.
package matrix

// Matrix is a ragged 2-D grid of T. The zero value is an empty, usable
// Matrix.
type Matrix[T any] struct {
	rows [][]T
}

// New returns an empty Matrix.
func New[T any]() *Matrix[T] {
	return &Matrix[T]{}
}

func grow_rows[T any](rows [][]T, i int) [][]T {
	for len(rows) <= i {
		rows = append(rows, nil)
	}
	return rows
}

func grow_cols[T any](col []T, j int) []T {
	for len(col) <= j {
		var zero T
		col = append(col, zero)
	}
	return col
}

// Insert grows both dimensions as needed (zero-filling new cells) and
// returns a pointer to the cell at (i, j) so the caller can assign into it.
func (m *Matrix[T]) Insert(i, j int) *T {
	m.rows = grow_rows(m.rows, i)
	m.rows[i] = grow_cols(m.rows[i], j)
	return &m.rows[i][j]
}

// Set assigns val at (i, j), growing the matrix as needed.
func (m *Matrix[T]) Set(i, j int, val T) {
	*m.Insert(i, j) = val
}

// Get returns the value at (i, j) and whether the cell exists. Missing
// cells report the zero value and false.
func (m *Matrix[T]) Get(i, j int) (T, bool) {
	var zero T
	if i < 0 || i >= len(m.rows) {
		return zero, false
	}
	row := m.rows[i]
	if j < 0 || j >= len(row) {
		return zero, false
	}
	return row[j], true
}

// GetOrZero returns the value at (i, j), or the zero value for missing cells.
func (m *Matrix[T]) GetOrZero(i, j int) T {
	v, _ := m.Get(i, j)
	return v
}

// Rows returns the number of rows (lines) in the matrix.
func (m *Matrix[T]) Rows() int {
	return len(m.rows)
}

// Cols returns the number of columns in row i, or 0 if i is out of range.
func (m *Matrix[T]) Cols(i int) int {
	if i < 0 || i >= len(m.rows) {
		return 0
	}
	return len(m.rows[i])
}

// RemoveRow deletes row i entirely, shifting subsequent rows up.
func (m *Matrix[T]) RemoveRow(i int) {
	if i < 0 || i >= len(m.rows) {
		return
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
}

// RemoveCol deletes column j from row i, shifting subsequent columns in
// that row left. Other rows are untouched (the matrix is ragged).
func (m *Matrix[T]) RemoveCol(i, j int) {
	if i < 0 || i >= len(m.rows) {
		return
	}
	row := m.rows[i]
	if j < 0 || j >= len(row) {
		return
	}
	m.rows[i] = append(row[:j], row[j+1:]...)
}

// Visit calls fn(i, j, val) for every populated cell in row-major order.
func (m *Matrix[T]) Visit(fn func(i, j int, val T)) {
	for i, row := range m.rows {
		for j, v := range row {
			fn(i, j, v)
		}
	}
}

// Equal walks the union of indices of a and b, applying cmp to every cell
// (missing cells compare as the zero value). It reports whether any cell
// differed; if changedRows is non-nil, the index of every row containing at
// least one differing cell is appended to it.
func Equal[T any](a, b *Matrix[T], cmp func(x, y T) bool, changedRows *[]int) bool {
	changed := false
	len_i := len(a.rows)
	if len(b.rows) > len_i {
		len_i = len(b.rows)
	}

	for i := 0; i < len_i; i++ {
		var row_a, row_b []T
		if i < len(a.rows) {
			row_a = a.rows[i]
		}
		if i < len(b.rows) {
			row_b = b.rows[i]
		}

		len_j := len(row_a)
		if len(row_b) > len_j {
			len_j = len(row_b)
		}

		row_changed := false
		for j := 0; j < len_j; j++ {
			var va, vb T
			if j < len(row_a) {
				va = row_a[j]
			}
			if j < len(row_b) {
				vb = row_b[j]
			}
			if !cmp(va, vb) {
				row_changed = true
				break
			}
		}

		if row_changed {
			changed = true
			if changedRows != nil {
				*changedRows = append(*changedRows, i)
			}
		}
	}

	return changed
}
