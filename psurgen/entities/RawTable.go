package entities

// RawTable holds the rows of a located document table before any typing.
// Cell values are the trimmed text contents in document order.
type RawTable struct {
	Rows [][]string `json:"rows"`
}

func (t RawTable) IsEmpty() bool {
	return len(t.Rows) == 0
}

// HasMinimumRows reports whether the table carries at least n rows.
// Extractors use this to treat header-only tables as "not found".
func (t RawTable) HasMinimumRows(n int) bool {
	return len(t.Rows) >= n
}

func (t RawTable) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

func (t RawTable) DataRows() [][]string {
	if len(t.Rows) < 2 {
		return nil
	}
	return t.Rows[1:]
}
