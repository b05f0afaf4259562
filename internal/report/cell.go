package report

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/signalnine/seedbench/internal/aggregate"
	"github.com/signalnine/seedbench/internal/record"
	"github.com/signalnine/seedbench/internal/stats"
)

const (
	maxPlainLen   = 43
	truncatedLen  = 40
	truncatedMark = "..."
)

// ColorProb maps P(candidate > baseline) to a text color: shades of red
// below 0.5, shades of green above, black at exactly 0.5.
func ColorProb(p float64) string {
	if p < 0.5 {
		red := 1 - 2*p
		return fmt.Sprintf("#%x00", int(15*red))
	}
	green := 2*p - 1
	return fmt.Sprintf("#0%x0", int(15*green))
}

// Cell renders one report cell comparing a candidate slice of records with
// the matching baseline slice.
type Cell struct {
	Options aggregate.Options
}

func (c Cell) Render(candidate, baseline []record.Record) string {
	st := aggregate.Aggregate(candidate, c.Options)
	base := aggregate.Aggregate(baseline, c.Options)

	var b strings.Builder
	logScore := st.Get(aggregate.LogScore)
	color := ColorProb(logScore.ProbMeanLarger(base.Get(aggregate.LogScore)))
	fmt.Fprintf(&b, `<span style="font-size:125%%; font-weight:bold; color:%s">log_score = %s</span>`,
		color, logScore.HTML())
	// An empty slice has mean 0 by convention, so it shows score = 1.
	fmt.Fprintf(&b, "<br>score = %s", stats.FormatFloat(math.Exp(logScore.Mean())))

	for _, name := range st.Names() {
		switch name {
		case aggregate.LogScore:
			continue
		case record.KeySeed:
			fmt.Fprintf(&b, "<br>%s = %s", html.EscapeString(name), html.EscapeString(truncate(fmt.Sprint(st.Seeds))))
		default:
			d := st.Metrics[name]
			fmt.Fprintf(&b, `<br>%s = <span style="color:%s">%s</span>`,
				html.EscapeString(name), ColorProb(d.ProbMeanLarger(base.Metrics[name])), d.HTML())
		}
	}
	return b.String()
}

// truncate shortens s by characters, not bytes, so the result stays valid
// UTF-8.
func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxPlainLen {
		return string(r[:truncatedLen]) + truncatedMark
	}
	return s
}
