// Package scale rescales numeric columns with parameters fit on one dataset
// and applied to others, so test and validate subsets never leak into the fit.
package scale

import (
	"strings"

	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/stats"
)

// Method is a scaling strategy.
type Method int

const (
	// MinMax maps the fitted range onto [0, 1].
	MinMax Method = iota
	// Standard centers on the mean and divides by the population standard deviation.
	Standard
	// Robust centers on the median and divides by the interquartile range.
	Robust
)

func (m Method) String() string {
	switch m {
	case MinMax:
		return "minmax"
	case Standard:
		return "standard"
	case Robust:
		return "robust"
	}
	return "unknown"
}

// Valid reports whether m is one of the defined methods.
func (m Method) Valid() bool { return m >= MinMax && m <= Robust }

// ParseMethod parses a method name, case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minmax", "min-max", "min_max":
		return MinMax, nil
	case "standard":
		return Standard, nil
	case "robust":
		return Robust, nil
	}
	return MinMax, &core.ConfigError{Param: "scaling method", Value: s, Reason: "want minmax, standard or robust"}
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(b []byte) error {
	parsed, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Params are the fitted parameters for one column: x' = (x - Center) / Scale.
type Params struct {
	Column string  `json:"column" yaml:"column"`
	Center float64 `json:"center" yaml:"center"`
	Scale  float64 `json:"scale" yaml:"scale"`
}

// Apply scales a single value.
func (p Params) Apply(x float64) float64 { return (x - p.Center) / p.Scale }

// Scaler holds fitted parameters. It is immutable and safe for concurrent use.
type Scaler struct {
	method Method
	params []Params
}

// Method returns the method the scaler was fit with.
func (s *Scaler) Method() Method { return s.method }

// Params returns a copy of the fitted parameters in column order.
func (s *Scaler) Params() []Params {
	out := make([]Params, len(s.params))
	copy(out, s.params)
	return out
}

// Columns returns the fitted column names.
func (s *Scaler) Columns() []string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.Column
	}
	return names
}

func numericColumn(op string, ds *core.Dataset, name string) (*core.Column, error) {
	c, err := ds.Column(name)
	if err != nil {
		return nil, core.MissingColumn(op, name)
	}
	if c.Kind() != core.KindNumeric {
		return nil, core.WrongKind(op, name, core.KindNumeric)
	}
	return c, nil
}

// Fit computes scaling parameters for columns from train. Missing values are
// ignored. A zero scale (constant column) is replaced by 1 so the transform
// only shifts.
func Fit(train *core.Dataset, columns []string, method Method) (*Scaler, error) {
	if !method.Valid() {
		return nil, &core.ConfigError{Param: "scaling method", Value: int(method), Reason: "unknown method"}
	}
	s := &Scaler{method: method, params: make([]Params, 0, len(columns))}
	for _, name := range columns {
		c, err := numericColumn("fit scaler", train, name)
		if err != nil {
			return nil, err
		}
		values := c.Floats()
		if len(values) == 0 {
			return nil, core.Degenerate("fit scaler", "column %q has no values in train", name)
		}

		p := Params{Column: name}
		switch method {
		case MinMax:
			lo, hi := stats.MinMax(values)
			p.Center, p.Scale = lo, hi-lo
		case Standard:
			p.Center, p.Scale = stats.PopMeanStd(values)
		case Robust:
			q1, q3 := stats.Quartiles(values)
			p.Center, p.Scale = stats.Median(values), q3-q1
		}
		if p.Scale == 0 {
			p.Scale = 1
		}
		s.params = append(s.params, p)
	}
	return s, nil
}

// Transform applies the fitted parameters to ds. The result has the scaled
// columns first, under their original names, followed by the untouched
// columns. Row order and index are preserved; values are not clipped.
func (s *Scaler) Transform(ds *core.Dataset) (*core.Dataset, error) {
	scaled := make([]*core.Column, len(s.params))
	for i, p := range s.params {
		c, err := numericColumn("transform", ds, p.Column)
		if err != nil {
			return nil, err
		}
		scaled[i], err = c.Map(p.Column, p.Apply)
		if err != nil {
			return nil, err
		}
	}
	return ds.Reorder(scaled)
}

// Scaled holds the three transformed subsets.
type Scaled struct {
	Train    *core.Dataset
	Test     *core.Dataset
	Validate *core.Dataset
	Scaler   *Scaler
}

// FitTransform fits on train and transforms train, test and validate with
// the same parameters.
func FitTransform(train, test, validate *core.Dataset, columns []string, method Method) (*Scaled, error) {
	s, err := Fit(train, columns, method)
	if err != nil {
		return nil, err
	}
	out := &Scaled{Scaler: s}
	if out.Train, err = s.Transform(train); err != nil {
		return nil, err
	}
	if out.Test, err = s.Transform(test); err != nil {
		return nil, err
	}
	if out.Validate, err = s.Transform(validate); err != nil {
		return nil, err
	}
	return out, nil
}
