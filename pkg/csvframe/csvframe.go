// Package csvframe reads and writes datasets as CSV.
//
// The first record is the header. A column is numeric when every
// non-missing cell parses as a float; otherwise it is categorical. The
// optional index column becomes the dataset's row labels.
package csvframe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// DefaultIndexColumn is the header written for the index when Options.IndexColumn is empty.
const DefaultIndexColumn = "index"

// DefaultMissingMarkers are the cell values read as missing.
var DefaultMissingMarkers = []string{"", "NA", "NaN", "nan", "NULL", "null"}

// Options controls reading and writing.
type Options struct {
	// IndexColumn names the column holding row labels. When empty, Read
	// assigns 0..n-1 and Write uses DefaultIndexColumn.
	IndexColumn string
	// MissingMarkers overrides DefaultMissingMarkers.
	MissingMarkers []string
	// NoIndex makes Write omit the index column.
	NoIndex bool
}

func (o Options) markers() []string {
	if o.MissingMarkers == nil {
		return DefaultMissingMarkers
	}
	return o.MissingMarkers
}

// Read parses CSV from r into a dataset.
func Read(r io.Reader, opts Options) (*core.Dataset, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv has no header row")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv records: %w", err)
	}

	indexAt := -1
	if opts.IndexColumn != "" {
		indexAt = slices.Index(header, opts.IndexColumn)
		if indexAt < 0 {
			return nil, core.MissingColumn("read csv", opts.IndexColumn)
		}
	}

	markers := opts.markers()
	isMissing := func(s string) bool { return slices.Contains(markers, strings.TrimSpace(s)) }

	var index []int64
	if indexAt >= 0 {
		index = make([]int64, len(records))
		for i, rec := range records {
			label, err := strconv.ParseInt(strings.TrimSpace(rec[indexAt]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid index label %q: %w", i+1, rec[indexAt], err)
			}
			index[i] = label
		}
	} else {
		index = make([]int64, len(records))
		for i := range index {
			index[i] = int64(i)
		}
	}

	cols := make([]*core.Column, 0, len(header))
	for j, name := range header {
		if j == indexAt {
			continue
		}
		cells := make([]string, len(records))
		for i, rec := range records {
			cells[i] = rec[j]
		}
		col, err := inferColumn(name, cells, isMissing)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	ds, err := core.NewIndexedDataset(index, cols...)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset from csv: %w", err)
	}
	return ds, nil
}

// inferColumn builds a numeric column when every present cell is a float.
func inferColumn(name string, cells []string, isMissing func(string) bool) (*core.Column, error) {
	valid := make([]bool, len(cells))
	nums := make([]float64, len(cells))
	numeric := true
	for i, cell := range cells {
		if isMissing(cell) {
			continue
		}
		valid[i] = true
		if !numeric {
			continue
		}
		f, err := cast.ToFloat64E(strings.TrimSpace(cell))
		if err != nil {
			numeric = false
			continue
		}
		nums[i] = f
	}
	if numeric {
		return core.NewNumericColumn(name, nums, valid)
	}
	return core.NewCategoricalColumn(name, cells, valid)
}

// Write encodes ds as CSV: the index column first unless NoIndex is set,
// missing cells as empty strings, floats in shortest round-trip form.
func Write(w io.Writer, ds *core.Dataset, opts Options) error {
	cw := csv.NewWriter(w)

	header := ds.Names()
	if !opts.NoIndex {
		name := opts.IndexColumn
		if name == "" {
			name = DefaultIndexColumn
		}
		header = append([]string{name}, header...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	cols := ds.Columns()
	rec := make([]string, len(header))
	for i := 0; i < ds.NumRows(); i++ {
		k := 0
		if !opts.NoIndex {
			rec[0] = cast.ToString(ds.Label(i))
			k = 1
		}
		for j, c := range cols {
			rec[k+j] = c.String(i)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFile reads a CSV file.
func ReadFile(path string, opts Options) (*core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ds, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// WriteFile writes ds to path, creating parent directories as needed.
func WriteFile(path string, ds *core.Dataset, opts Options) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return Write(f, ds, opts)
}
