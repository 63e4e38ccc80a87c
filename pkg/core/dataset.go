package core

import (
	"fmt"
	"slices"
)

// Dataset is an ordered set of equally long columns aligned by a row index.
// Index labels are unique and are never rewritten by filtering operations.
type Dataset struct {
	index   []int64
	columns []*Column
	byName  map[string]int
}

// NewDataset builds a dataset with the default index 0..n-1.
func NewDataset(columns ...*Column) (*Dataset, error) {
	n := 0
	if len(columns) > 0 {
		n = columns[0].Len()
	}
	index := make([]int64, n)
	for i := range index {
		index[i] = int64(i)
	}
	return NewIndexedDataset(index, columns...)
}

// NewIndexedDataset builds a dataset with explicit row labels.
func NewIndexedDataset(index []int64, columns ...*Column) (*Dataset, error) {
	seen := make(map[int64]struct{}, len(index))
	for _, label := range index {
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("duplicate index label %d", label)
		}
		seen[label] = struct{}{}
	}

	d := &Dataset{
		index:   slices.Clone(index),
		columns: make([]*Column, 0, len(columns)),
		byName:  make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if c == nil {
			return nil, fmt.Errorf("nil column")
		}
		if c.Len() != len(index) {
			return nil, fmt.Errorf("column %q has %d rows, index has %d", c.Name(), c.Len(), len(index))
		}
		if _, dup := d.byName[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name())
		}
		d.byName[c.Name()] = len(d.columns)
		d.columns = append(d.columns, c)
	}
	return d, nil
}

// MustDataset is NewDataset that panics on error. Intended for tests and
// literals whose shape is known to be valid.
func MustDataset(columns ...*Column) *Dataset {
	d, err := NewDataset(columns...)
	if err != nil {
		panic(err)
	}
	return d
}

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int { return len(d.index) }

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int { return len(d.columns) }

// Index returns a copy of the row labels.
func (d *Dataset) Index() []int64 { return slices.Clone(d.index) }

// Label returns the index label of row position i.
func (d *Dataset) Label(i int) int64 { return d.index[i] }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name()
	}
	return names
}

// Columns returns the columns in order. The slice is a copy; the columns
// themselves are immutable.
func (d *Dataset) Columns() []*Column { return slices.Clone(d.columns) }

// Has reports whether the dataset has a column called name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// Column returns the named column or an ErrSchemaMismatch.
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.byName[name]
	if !ok {
		return nil, MissingColumn("column", name)
	}
	return d.columns[i], nil
}

// Take returns a new dataset holding the given row positions, in the order
// given. Index labels travel with their rows, so positions must be distinct.
func (d *Dataset) Take(rows []int) *Dataset {
	out := &Dataset{
		index:   make([]int64, len(rows)),
		columns: make([]*Column, len(d.columns)),
		byName:  d.byName,
	}
	for j, i := range rows {
		out.index[j] = d.index[i]
	}
	for k, c := range d.columns {
		out.columns[k] = c.take(rows)
	}
	return out
}

// Filter returns the rows for which keep returns true, in order.
func (d *Dataset) Filter(keep func(row int) bool) *Dataset {
	rows := make([]int, 0, len(d.index))
	for i := range d.index {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return d.Take(rows)
}

// Select returns a dataset with only the named columns, in the given order.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return NewIndexedDataset(d.index, cols...)
}

// Drop returns a dataset without the named columns. Unknown names fail with
// ErrSchemaMismatch.
func (d *Dataset) Drop(names ...string) (*Dataset, error) {
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !d.Has(name) {
			return nil, MissingColumn("drop", name)
		}
		drop[name] = struct{}{}
	}
	keep := make([]*Column, 0, len(d.columns))
	for _, c := range d.columns {
		if _, ok := drop[c.Name()]; !ok {
			keep = append(keep, c)
		}
	}
	return NewIndexedDataset(d.index, keep...)
}

// WithColumns returns a dataset with the given columns appended.
func (d *Dataset) WithColumns(cols ...*Column) (*Dataset, error) {
	all := make([]*Column, 0, len(d.columns)+len(cols))
	all = append(all, d.columns...)
	for _, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("nil column")
		}
		if slices.ContainsFunc(all, func(o *Column) bool { return o.Name() == c.Name() }) {
			return nil, DuplicateColumn("with columns", c.Name())
		}
		all = append(all, c)
	}
	return NewIndexedDataset(d.index, all...)
}

// Reorder returns a dataset whose columns are cols followed by every column
// of d not named in cols. It is used to reassemble a transformed subset.
func (d *Dataset) Reorder(cols []*Column) (*Dataset, error) {
	replaced := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		replaced[c.Name()] = struct{}{}
	}
	all := make([]*Column, 0, len(d.columns))
	all = append(all, cols...)
	for _, c := range d.columns {
		if _, ok := replaced[c.Name()]; !ok {
			all = append(all, c)
		}
	}
	return NewIndexedDataset(d.index, all...)
}

// Row returns the values of row position i, nil for missing cells.
func (d *Dataset) Row(i int) []any {
	row := make([]any, len(d.columns))
	for k, c := range d.columns {
		row[k] = c.Value(i)
	}
	return row
}

// RowNullCount returns the number of missing cells in row position i.
func (d *Dataset) RowNullCount(i int) int {
	n := 0
	for _, c := range d.columns {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}
