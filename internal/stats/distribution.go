// Package stats accumulates per-metric sample statistics and compares them.
package stats

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aclements/go-moremath/stats"
)

// sigmaEpsilon is the spread below which a distribution is shown as a
// single value.
const sigmaEpsilon = 1e-10

// Distribution is an online accumulator over a stream of samples. The zero
// value is not ready for use; call NewDistribution.
type Distribution struct {
	n    int
	sum  float64
	sum2 float64
	min  float64
	max  float64
}

func NewDistribution() *Distribution {
	return &Distribution{min: math.Inf(1), max: math.Inf(-1)}
}

// Of builds a Distribution from the given samples.
func Of(xs ...float64) *Distribution {
	d := NewDistribution()
	for _, x := range xs {
		d.AddValue(x)
	}
	return d
}

func (d *Distribution) AddValue(x float64) {
	d.n++
	d.sum += x
	d.sum2 += x * x
	d.max = math.Max(d.max, x)
	d.min = math.Min(d.min, x)
}

func (d *Distribution) N() int { return d.n }
func (d *Distribution) Min() float64 { return d.min }
func (d *Distribution) Max() float64 { return d.max }

// Mean returns 0 for an empty distribution.
func (d *Distribution) Mean() float64 {
	if d.n == 0 {
		return 0
	}
	return d.sum / float64(d.n)
}

// Sigma returns the sample standard deviation, or 0 with fewer than two
// samples. The variance comes from the running sums, so cancellation can
// push it slightly negative; such values are clamped to 0.
func (d *Distribution) Sigma() float64 {
	if d.n < 2 {
		return 0
	}
	mean := d.Mean()
	n := float64(d.n)
	sigma2 := (d.sum2 - 2*mean*d.sum + mean*mean*n) / (n - 1)
	if sigma2 < 0 {
		sigma2 = 0
	}
	return math.Sqrt(sigma2)
}

// HTML renders the distribution as an inline fragment. The hover title
// carries the range and sample count.
func (d *Distribution) HTML() string {
	if d.n == 0 {
		return "--"
	}
	if d.Sigma() < sigmaEpsilon {
		return FormatFloat(d.Mean())
	}
	return fmt.Sprintf(`<span title="%s..%s, %d items">%.3f &plusmn; <i>%.3f</i></span>`,
		FormatFloat(d.min), FormatFloat(d.max), d.n, d.Mean(), d.Sigma())
}

// ProbMeanLarger estimates the probability that the true mean of d exceeds
// the true mean of other, treating both sample means as normally distributed.
// An empty side carries no information and yields 0.5. A side with a single
// sample has no variance estimate of its own and borrows the other side's.
func (d *Distribution) ProbMeanLarger(other *Distribution) float64 {
	if other == nil {
		other = NewDistribution()
	}
	if d.n == 0 || other.n == 0 {
		return 0.5
	}
	diffMean := d.Mean() - other.Mean()

	sigma1 := d.Sigma()
	sigma2 := other.Sigma()
	if other.n == 1 {
		sigma2 = sigma1
	}
	if d.n == 1 {
		sigma1 = sigma2
	}

	diffSigma := math.Sqrt(sigma1*sigma1 + sigma2*sigma2)
	if diffSigma == 0 {
		switch {
		case diffMean > 0:
			return 1
		case diffMean < 0:
			return 0
		default:
			return 0.5
		}
	}
	return stats.StdNormal.CDF(diffMean / diffSigma)
}

// FormatFloat prints x with the fewest digits that round-trip, in plain
// decimal notation unless x is huge.
func FormatFloat(x float64) string {
	if math.Abs(x) < 1e16 {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}
