// Package aggregate folds run records into per-metric distributions.
package aggregate

import (
	"math"
	"sort"

	"github.com/signalnine/seedbench/internal/record"
	"github.com/signalnine/seedbench/internal/stats"
)

const (
	// LogScore is the synthetic metric derived from each record's score.
	LogScore = "log_score"

	// FailedLogScore stands in for log(score) when a run scored zero, so
	// failures stay comparable with low scores on the log scale.
	FailedLogScore = -100
)

type Options struct {
	// Exclude lists record keys that never get a distribution of their own.
	Exclude map[string]bool
}

// DefaultExcluded returns the keys excluded from per-metric aggregation by
// default.
func DefaultExcluded() []string {
	return []string{record.KeyScore, record.KeySeed, record.KeyTime, record.KeyLongestPathStats}
}

func DefaultOptions() Options {
	return NewOptions(DefaultExcluded())
}

func NewOptions(exclude []string) Options {
	opts := Options{Exclude: make(map[string]bool, len(exclude))}
	for _, k := range exclude {
		opts.Exclude[k] = true
	}
	return opts
}

// Result maps metric names to their distributions. Seeds are categorical and
// kept as a plain list in input order.
type Result struct {
	Metrics map[string]*stats.Distribution
	Seeds   []string
}

// Aggregate computes log_score, the seed list, and one distribution per
// remaining numeric key. Keys missing from some records just get fewer
// samples; non-numeric values are skipped.
func Aggregate(records []record.Record, opts Options) *Result {
	res := &Result{
		Metrics: map[string]*stats.Distribution{LogScore: stats.NewDistribution()},
		Seeds:   make([]string, 0, len(records)),
	}
	for _, r := range records {
		if score := r.Score(); score != 0 {
			res.Metrics[LogScore].AddValue(math.Log(score))
		} else {
			res.Metrics[LogScore].AddValue(FailedLogScore)
		}
		res.Seeds = append(res.Seeds, r.Seed())

		for _, k := range r.Keys() {
			v := r[k]
			if k == record.KeyScore || k == record.KeySeed || opts.Exclude[k] {
				continue
			}
			x, ok := record.ToFloat(v)
			if !ok {
				continue
			}
			d, ok := res.Metrics[k]
			if !ok {
				d = stats.NewDistribution()
				res.Metrics[k] = d
			}
			d.AddValue(x)
		}
	}
	return res
}

// Get returns the named distribution, or an empty one when the metric was
// never observed.
func (r *Result) Get(name string) *stats.Distribution {
	if d, ok := r.Metrics[name]; ok {
		return d
	}
	return stats.NewDistribution()
}

// Names returns every metric name plus the seed list's name, sorted.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Metrics)+1)
	for k := range r.Metrics {
		names = append(names, k)
	}
	names = append(names, record.KeySeed)
	sort.Strings(names)
	return names
}
