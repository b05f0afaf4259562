// Package group partitions run records into buckets along one report axis.
// Every axis has an overview bucket that holds all records.
package group

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/signalnine/seedbench/internal/record"
)

// Bucket is either the overview bucket or a concrete key.
type Bucket[K cmp.Ordered] struct {
	key   K
	valid bool
}

func Overview[K cmp.Ordered]() Bucket[K] { return Bucket[K]{} }

func Value[K cmp.Ordered](k K) Bucket[K] { return Bucket[K]{key: k, valid: true} }

func (b Bucket[K]) IsOverview() bool { return !b.valid }

func (b Bucket[K]) Key() (K, bool) { return b.key, b.valid }

func (b Bucket[K]) String() string {
	if !b.valid {
		return "all"
	}
	return fmt.Sprint(b.key)
}

type Grouper[K cmp.Ordered] interface {
	// Bucket returns the bucket r falls into.
	Bucket(r record.Record) Bucket[K]
	// AllBuckets lists the overview bucket first, then every bucket observed
	// in records in ascending order.
	AllBuckets(records []record.Record) []Bucket[K]
	Belongs(r record.Record, b Bucket[K]) bool
	// IsOverview reports whether b should be rendered as an aggregate.
	IsOverview(b Bucket[K]) bool
}

// Identity puts every record into the overview bucket.
type Identity[K cmp.Ordered] struct{}

func (Identity[K]) Bucket(record.Record) Bucket[K] { return Overview[K]() }

func (Identity[K]) AllBuckets([]record.Record) []Bucket[K] {
	return []Bucket[K]{Overview[K]()}
}

func (Identity[K]) Belongs(record.Record, Bucket[K]) bool { return true }

func (Identity[K]) IsOverview(Bucket[K]) bool { return false }

// Func buckets records by a deterministic key function.
type Func[K cmp.Ordered] struct {
	Key func(record.Record) K
}

func ByFunc[K cmp.Ordered](key func(record.Record) K) *Func[K] {
	return &Func[K]{Key: key}
}

func (g *Func[K]) Bucket(r record.Record) Bucket[K] {
	return Value(g.Key(r))
}

func (g *Func[K]) AllBuckets(records []record.Record) []Bucket[K] {
	keys := make([]K, 0, len(records))
	for _, r := range records {
		keys = append(keys, g.Key(r))
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	buckets := make([]Bucket[K], 0, len(keys)+1)
	buckets = append(buckets, Overview[K]())
	for _, k := range keys {
		buckets = append(buckets, Value(k))
	}
	return buckets
}

func (g *Func[K]) Belongs(r record.Record, b Bucket[K]) bool {
	return b.IsOverview() || g.Bucket(r) == b
}

func (g *Func[K]) IsOverview(b Bucket[K]) bool {
	return b.IsOverview()
}
