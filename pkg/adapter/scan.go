package adapter

import (
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// numericTypes are database type names whose values become numeric columns.
// Parameters such as DECIMAL(18,3) are stripped before lookup.
var numericTypes = map[string]struct{}{
	"TINYINT": {}, "SMALLINT": {}, "INTEGER": {}, "INT": {}, "BIGINT": {}, "HUGEINT": {},
	"UTINYINT": {}, "USMALLINT": {}, "UINTEGER": {}, "UBIGINT": {}, "UHUGEINT": {},
	"INT2": {}, "INT4": {}, "INT8": {}, "SERIAL": {}, "BIGSERIAL": {},
	"FLOAT": {}, "FLOAT4": {}, "FLOAT8": {}, "DOUBLE": {}, "DOUBLE PRECISION": {}, "REAL": {},
	"DECIMAL": {}, "NUMERIC": {},
}

// IsNumericType reports whether a database type name maps to a numeric column.
func IsNumericType(dbType string) bool {
	base := strings.ToUpper(strings.TrimSpace(dbType))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	_, ok := numericTypes[base]
	return ok
}

// ScanDataset reads every row of rows into a dataset. A column is numeric
// when the driver reports a numeric database type, or, when it reports no
// type, when every non-null value is a Go number. NULL becomes a missing
// value. When indexColumn is set, that column supplies the row labels.
// The caller closes rows.
func ScanDataset(rows *sql.Rows, indexColumn string) (*core.Dataset, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}
	if indexColumn != "" && !hasColumn(types, indexColumn) {
		return nil, core.MissingColumn("scan", indexColumn)
	}

	var cells [][]any
	for rows.Next() {
		vals := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(cells)+1, err)
		}
		cells = append(cells, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	var index []int64
	cols := make([]*core.Column, 0, len(types))
	for j, ct := range types {
		values := make([]any, len(cells))
		for i, row := range cells {
			values[i] = row[j]
		}

		if indexColumn != "" && ct.Name() == indexColumn {
			if index, err = indexLabels(ct.Name(), values); err != nil {
				return nil, err
			}
			continue
		}

		col, err := buildColumn(ct.Name(), ct.DatabaseTypeName(), values)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	if indexColumn == "" {
		index = make([]int64, len(cells))
		for i := range index {
			index[i] = int64(i)
		}
	}

	ds, err := core.NewIndexedDataset(index, cols...)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset: %w", err)
	}
	return ds, nil
}

func hasColumn(types []*sql.ColumnType, name string) bool {
	for _, ct := range types {
		if ct.Name() == name {
			return true
		}
	}
	return false
}

func indexLabels(name string, values []any) ([]int64, error) {
	labels := make([]int64, len(values))
	for i, v := range values {
		if v == nil {
			return nil, fmt.Errorf("index column %q: row %d is NULL", name, i+1)
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		label, err := cast.ToInt64E(v)
		if err != nil {
			return nil, fmt.Errorf("index column %q: row %d: %w", name, i+1, err)
		}
		labels[i] = label
	}
	return labels, nil
}

func buildColumn(name, dbType string, values []any) (*core.Column, error) {
	numeric := IsNumericType(dbType)
	if dbType == "" {
		numeric = allNumbers(values)
	}

	valid := make([]bool, len(values))
	if numeric {
		nums := make([]float64, len(values))
		for i, v := range values {
			if v == nil {
				continue
			}
			f, err := toFloat(v)
			if err != nil {
				return nil, fmt.Errorf("column %q: row %d: %w", name, i+1, err)
			}
			nums[i], valid[i] = f, !math.IsNaN(f)
		}
		return core.NewNumericColumn(name, nums, valid)
	}

	strs := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		s, err := toText(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: row %d: %w", name, i+1, err)
		}
		strs[i], valid[i] = s, true
	}
	return core.NewCategoricalColumn(name, strs, valid)
}

// allNumbers reports whether every non-nil value is a Go numeric type.
func allNumbers(values []any) bool {
	for _, v := range values {
		switch v.(type) {
		case nil, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		default:
			return false
		}
	}
	return true
}

// toFloat converts a scanned value. Drivers return NUMERIC as text or as
// decimal types with a Float64 method.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case []byte:
		return cast.ToFloat64E(string(x))
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return f, nil
	case interface{ Float64() float64 }:
		return x.Float64(), nil
	}
	return cast.ToFloat64E(v)
}

func toText(v any) (string, error) {
	switch x := v.(type) {
	case []byte:
		return string(x), nil
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly), nil
		}
		return x.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return cast.ToStringE(v)
}
