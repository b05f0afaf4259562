package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/signalnine/seedbench/internal/aggregate"
	"github.com/signalnine/seedbench/internal/group"
	"github.com/signalnine/seedbench/internal/record"
)

const (
	AxisNone    = "none"
	AxisDensity = "density"
	AxisSize    = "size"

	// AxisMetricPrefix selects an axis keyed by a metric's raw value,
	// e.g. "metric:threads".
	AxisMetricPrefix = "metric:"
)

// DensityBucket quantizes the board density into bands of width 1/6,
// labelled in thirds.
func DensityBucket(r record.Record) float64 {
	d, _ := r.Float("density")
	return float64(int((d-0.1)*6)) / 3
}

// SizeBucket quantizes the board size into bands of width 7 starting at 20.
func SizeBucket(r record.Record) float64 {
	n, _ := r.Float("n")
	return math.Floor((n-20)/7)*7 + 20
}

// Axis returns the grouper registered under name.
func Axis(name string) (group.Grouper[float64], error) {
	switch {
	case name == "" || name == AxisNone:
		return group.Identity[float64]{}, nil
	case name == AxisDensity:
		return group.ByFunc(DensityBucket), nil
	case name == AxisSize:
		return group.ByFunc(SizeBucket), nil
	case strings.HasPrefix(name, AxisMetricPrefix) && len(name) > len(AxisMetricPrefix):
		key := strings.TrimPrefix(name, AxisMetricPrefix)
		return group.ByFunc(func(r record.Record) float64 {
			v, _ := r.Float(key)
			return v
		}), nil
	default:
		return nil, fmt.Errorf("unknown axis %q", name)
	}
}

// NewTable builds a table over the named row and column axes.
func NewTable(rows, columns string, opts aggregate.Options) (*Table[float64, float64], error) {
	rg, err := Axis(rows)
	if err != nil {
		return nil, fmt.Errorf("row axis: %w", err)
	}
	cg, err := Axis(columns)
	if err != nil {
		return nil, fmt.Errorf("column axis: %w", err)
	}
	return &Table[float64, float64]{Rows: rg, Columns: cg, Cell: Cell{Options: opts}}, nil
}

// DefaultTable groups rows by size and columns by density.
func DefaultTable() *Table[float64, float64] {
	return &Table[float64, float64]{
		Rows:    group.ByFunc(SizeBucket),
		Columns: group.ByFunc(DensityBucket),
		Cell:    Cell{Options: aggregate.DefaultOptions()},
	}
}
