package entities

import "strconv"

type cellKind uint8

const (
	cellText cellKind = iota
	cellNumber
	cellMissing
)

// Cell is a single frame value: free text, a typed number, or missing.
// Missing survives arithmetic (any operand missing yields missing) until
// the frame is finalized for display.
type Cell struct {
	kind cellKind
	text string
	num  float64
}

func TextCell(s string) Cell {
	return Cell{kind: cellText, text: s}
}

func NumberCell(f float64) Cell {
	return Cell{kind: cellNumber, num: f}
}

func MissingCell() Cell {
	return Cell{kind: cellMissing}
}

func (c Cell) IsMissing() bool {
	return c.kind == cellMissing
}

// Number returns the numeric value and whether the cell holds one.
func (c Cell) Number() (float64, bool) {
	if c.kind != cellNumber {
		return 0, false
	}
	return c.num, true
}

// Display renders the cell for output. Numbers print without a decimal
// point when integral, missing cells print empty.
func (c Cell) Display() string {
	switch c.kind {
	case cellText:
		return c.text
	case cellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Frame is a small columnar table: named columns over rows of cells.
// All mutating operations return a fresh frame so the exposure pipeline can
// be composed out of pure steps.
type Frame struct {
	Columns []string
	Rows    [][]Cell
}

// NewFrame builds a frame from a header row and raw data rows. Short rows
// are padded with empty text cells, long rows truncated to the header width.
func NewFrame(header []string, rows [][]string) Frame {
	cols := make([]string, len(header))
	copy(cols, header)

	frame := Frame{Columns: cols, Rows: make([][]Cell, 0, len(rows))}
	for _, row := range rows {
		cells := make([]Cell, len(cols))
		for i := range cols {
			if i < len(row) {
				cells[i] = TextCell(row[i])
			} else {
				cells[i] = TextCell("")
			}
		}
		frame.Rows = append(frame.Rows, cells)
	}
	return frame
}

func (f Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (f Frame) HasColumn(name string) bool {
	return f.ColumnIndex(name) >= 0
}

func (f Frame) RowCount() int {
	return len(f.Rows)
}

// Clone deep-copies the frame.
func (f Frame) Clone() Frame {
	out := Frame{
		Columns: make([]string, len(f.Columns)),
		Rows:    make([][]Cell, len(f.Rows)),
	}
	copy(out.Columns, f.Columns)
	for i, row := range f.Rows {
		cells := make([]Cell, len(row))
		copy(cells, row)
		out.Rows[i] = cells
	}
	return out
}

// AppendColumn returns a frame with a new column appended. The cells slice
// is padded with missing cells when shorter than the row count.
func (f Frame) AppendColumn(name string, cells []Cell) Frame {
	out := f.Clone()
	out.Columns = append(out.Columns, name)
	for i := range out.Rows {
		if i < len(cells) {
			out.Rows[i] = append(out.Rows[i], cells[i])
		} else {
			out.Rows[i] = append(out.Rows[i], MissingCell())
		}
	}
	return out
}

// DropColumn returns a frame without the named column. Unknown names are a
// no-op.
func (f Frame) DropColumn(name string) Frame {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return f
	}
	out := Frame{
		Columns: make([]string, 0, len(f.Columns)-1),
		Rows:    make([][]Cell, len(f.Rows)),
	}
	out.Columns = append(out.Columns, f.Columns[:idx]...)
	out.Columns = append(out.Columns, f.Columns[idx+1:]...)
	for i, row := range f.Rows {
		cells := make([]Cell, 0, len(row)-1)
		cells = append(cells, row[:idx]...)
		cells = append(cells, row[idx+1:]...)
		out.Rows[i] = cells
	}
	return out
}

// RenameColumn returns a frame with the column renamed. Unknown names are a
// no-op.
func (f Frame) RenameColumn(oldName, newName string) Frame {
	idx := f.ColumnIndex(oldName)
	if idx < 0 {
		return f
	}
	out := f.Clone()
	out.Columns[idx] = newName
	return out
}

// Reorder returns a frame with columns arranged in the given order; columns
// absent from the order keep their relative position after the ordered ones.
func (f Frame) Reorder(order []string) Frame {
	indices := make([]int, 0, len(f.Columns))
	taken := make(map[int]bool, len(f.Columns))
	for _, name := range order {
		if idx := f.ColumnIndex(name); idx >= 0 && !taken[idx] {
			indices = append(indices, idx)
			taken[idx] = true
		}
	}
	for i := range f.Columns {
		if !taken[i] {
			indices = append(indices, i)
		}
	}

	out := Frame{
		Columns: make([]string, len(indices)),
		Rows:    make([][]Cell, len(f.Rows)),
	}
	for pos, idx := range indices {
		out.Columns[pos] = f.Columns[idx]
	}
	for r, row := range f.Rows {
		cells := make([]Cell, len(indices))
		for pos, idx := range indices {
			cells[pos] = row[idx]
		}
		out.Rows[r] = cells
	}
	return out
}

// DisplayRows renders every row for output.
func (f Frame) DisplayRows() [][]string {
	rows := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		rendered := make([]string, len(row))
		for j, cell := range row {
			rendered[j] = cell.Display()
		}
		rows[i] = rendered
	}
	return rows
}
