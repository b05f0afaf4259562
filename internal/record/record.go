package record

import (
	"encoding/json"
	"fmt"
	"sort"
)

const (
	KeyScore = "score"
	KeySeed  = "seed"
	KeyTime  = "time"

	// KeyLongestPathStats holds a compound value emitted by the solver and
	// is never aggregated.
	KeyLongestPathStats = "longest_path_stats"
)

// Record is the outcome of a single seeded trial: a flat mapping from field
// name to value. Records are treated as read-only once produced.
type Record map[string]any

func (r Record) Score() float64 {
	v, _ := r.Float(KeyScore)
	return v
}

func (r Record) Seed() string {
	v, ok := r[KeySeed]
	if !ok || v == nil {
		return ""
	}
	if f, ok := ToFloat(v); ok {
		return fmt.Sprint(f)
	}
	return fmt.Sprint(v)
}

func (r Record) Time() float64 {
	v, _ := r.Float(KeyTime)
	return v
}

// Float returns the numeric value stored under key.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// Keys returns the record's field names in ascending order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToFloat converts a decoded or parsed field value to float64. Booleans,
// strings and compound values are not numeric.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
