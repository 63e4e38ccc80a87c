package core

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the value type held by a Column.
type Kind int

// Column kinds. Dates and identifiers that are not numeric are categorical.
const (
	KindNumeric Kind = iota
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a named, typed sequence of values with a validity mask.
// A Column is immutable once built.
type Column struct {
	name  string
	kind  Kind
	nums  []float64
	strs  []string
	valid []bool
}

// NewNumericColumn builds a numeric column. A nil valid mask marks every
// value present; NaN values are always treated as missing.
func NewNumericColumn(name string, values []float64, valid []bool) (*Column, error) {
	if valid != nil && len(valid) != len(values) {
		return nil, fmt.Errorf("column %q: %d values but %d validity flags", name, len(values), len(valid))
	}
	c := &Column{
		name:  name,
		kind:  KindNumeric,
		nums:  make([]float64, len(values)),
		valid: make([]bool, len(values)),
	}
	copy(c.nums, values)
	for i, v := range values {
		c.valid[i] = !math.IsNaN(v) && (valid == nil || valid[i])
	}
	return c, nil
}

// NewCategoricalColumn builds a categorical column. A nil valid mask marks
// every value present.
func NewCategoricalColumn(name string, values []string, valid []bool) (*Column, error) {
	if valid != nil && len(valid) != len(values) {
		return nil, fmt.Errorf("column %q: %d values but %d validity flags", name, len(values), len(valid))
	}
	c := &Column{
		name:  name,
		kind:  KindCategorical,
		strs:  make([]string, len(values)),
		valid: make([]bool, len(values)),
	}
	copy(c.strs, values)
	for i := range values {
		c.valid[i] = valid == nil || valid[i]
	}
	return c, nil
}

// Floats is a shorthand for a numeric column where NaN marks missing values.
func Floats(name string, values ...float64) *Column {
	c, _ := NewNumericColumn(name, values, nil)
	return c
}

// Strings is a shorthand for a categorical column where "" marks missing values.
func Strings(name string, values ...string) *Column {
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = v != ""
	}
	c, _ := NewCategoricalColumn(name, values, valid)
	return c
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of values, missing ones included.
func (c *Column) Len() int { return len(c.valid) }

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool { return !c.valid[i] }

// Float returns the numeric value at row i. ok is false when the value is
// missing or the column is not numeric.
func (c *Column) Float(i int) (v float64, ok bool) {
	if c.kind != KindNumeric || !c.valid[i] {
		return math.NaN(), false
	}
	return c.nums[i], true
}

// String returns the value at row i formatted as text; missing values are "".
func (c *Column) String(i int) string {
	if !c.valid[i] {
		return ""
	}
	if c.kind == KindNumeric {
		return strconv.FormatFloat(c.nums[i], 'f', -1, 64)
	}
	return c.strs[i]
}

// Value returns row i as float64, string, or nil when missing.
func (c *Column) Value(i int) any {
	if !c.valid[i] {
		return nil
	}
	if c.kind == KindNumeric {
		return c.nums[i]
	}
	return c.strs[i]
}

// NullCount returns the number of missing values.
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Floats returns a copy of the non-missing values of a numeric column.
// It returns nil for categorical columns.
func (c *Column) Floats() []float64 {
	if c.kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// take returns a new column holding the given row positions.
func (c *Column) take(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind, valid: make([]bool, len(rows))}
	if c.kind == KindNumeric {
		out.nums = make([]float64, len(rows))
	} else {
		out.strs = make([]string, len(rows))
	}
	for j, i := range rows {
		out.valid[j] = c.valid[i]
		if c.kind == KindNumeric {
			out.nums[j] = c.nums[i]
		} else {
			out.strs[j] = c.strs[i]
		}
	}
	return out
}

// Rename returns a copy of the column under a new name.
func (c *Column) Rename(name string) *Column {
	out := *c
	out.name = name
	return &out
}

// Map applies fn to every present value of a numeric column and returns
// the result as a new numeric column. Missing values stay missing.
func (c *Column) Map(name string, fn func(float64) float64) (*Column, error) {
	if c.kind != KindNumeric {
		return nil, WrongKind("map", c.name, KindNumeric)
	}
	vals := make([]float64, len(c.nums))
	for i, v := range c.nums {
		if c.valid[i] {
			vals[i] = fn(v)
		}
	}
	return NewNumericColumn(name, vals, c.valid)
}
