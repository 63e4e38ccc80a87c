// Package split partitions a dataset into train, test and validate subsets
// with a seeded, reproducible shuffle.
package split

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// Ratios are the fractions of the whole dataset assigned to validate and
// test. Train gets the rest.
type Ratios struct {
	Validate float64 `json:"validate" yaml:"validate"`
	Test     float64 `json:"test" yaml:"test"`
	Seed     uint64  `json:"seed" yaml:"seed"`
}

// DefaultRatios gives 70% train, 10% test and 20% validate.
var DefaultRatios = Ratios{Validate: 0.2, Test: 0.1, Seed: 123}

// adjustedTest is the share of the non-validate remainder that goes to test,
// so that test ends up as Test of the whole.
func (r Ratios) adjustedTest() float64 { return r.Test / (1 - r.Validate) }

// Validate checks that both ratios and the adjusted test ratio are in [0, 1).
func (r Ratios) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"validate ratio", r.Validate},
		{"test ratio", r.Test},
	} {
		if math.IsNaN(f.v) || f.v < 0 || f.v >= 1 {
			return &core.ConfigError{Param: f.name, Value: f.v, Reason: "must be within [0, 1)"}
		}
	}
	if adj := r.adjustedTest(); adj >= 1 {
		return &core.ConfigError{
			Param:  "test ratio",
			Value:  r.Test,
			Reason: "test and validate together must leave rows for train",
		}
	}
	return nil
}

// Subsets is the result of Split. Together the three subsets hold every
// input row exactly once.
type Subsets struct {
	Train    *core.Dataset
	Test     *core.Dataset
	Validate *core.Dataset
}

// carve returns how many of n rows a ratio claims. The epsilon keeps exact
// products such as 0.1*100 from rounding up through float error.
func carve(ratio float64, n int) int {
	k := int(math.Ceil(ratio*float64(n) - 1e-9))
	return max(0, min(k, n))
}

// Split shuffles the row positions with a PCG source seeded from r.Seed,
// carves off validate, then splits the remainder into test and train. Each
// subset keeps the input's relative row order.
func Split(ds *core.Dataset, r Ratios) (*Subsets, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	n := ds.NumRows()
	rng := rand.New(rand.NewPCG(r.Seed, r.Seed))
	perm := rng.Perm(n)

	nVal := carve(r.Validate, n)
	rest := perm[nVal:]
	nTest := carve(r.adjustedTest(), len(rest))

	val := slices.Clone(perm[:nVal])
	test := slices.Clone(rest[:nTest])
	train := slices.Clone(rest[nTest:])
	for _, rows := range [][]int{val, test, train} {
		slices.Sort(rows)
	}

	return &Subsets{
		Train:    ds.Take(train),
		Test:     ds.Take(test),
		Validate: ds.Take(val),
	}, nil
}
