package report

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/seedbench/internal/aggregate"
	"github.com/signalnine/seedbench/internal/record"
	"github.com/signalnine/seedbench/internal/result"
)

type Options struct {
	Title     string
	Rows      string
	Columns   string
	Aggregate aggregate.Options
}

// MetricSummary compares one metric over all records of two runs.
type MetricSummary struct {
	Metric         string  `json:"metric"`
	CandidateN     int     `json:"candidate_n"`
	CandidateMean  float64 `json:"candidate_mean"`
	CandidateSigma float64 `json:"candidate_sigma"`
	BaselineN      int     `json:"baseline_n"`
	BaselineMean   float64 `json:"baseline_mean"`
	BaselineSigma  float64 `json:"baseline_sigma"`
	ProbLarger     float64 `json:"prob_larger"`
}

// Generate reads the records of a candidate run and, if baselineDir is set,
// of a baseline run, and writes a report in the given format.
func Generate(runDir, baselineDir, format string, w io.Writer, opts Options) error {
	candidate, err := result.ReadRecords(runDir)
	if err != nil {
		return err
	}
	var baseline []record.Record
	if baselineDir != "" {
		baseline, err = result.ReadRecords(baselineDir)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
	}

	switch format {
	case "html":
		table, err := NewTable(opts.Rows, opts.Columns, opts.Aggregate)
		if err != nil {
			return err
		}
		return WriteHTML(w, opts.Title, table.Render(candidate, baseline))
	case "json":
		return WriteJSON(Summarize(candidate, baseline, opts.Aggregate), w)
	case "table":
		return WriteTable(Summarize(candidate, baseline, opts.Aggregate), w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Summarize compares every metric of candidate against baseline, log_score
// first and the rest in name order.
func Summarize(candidate, baseline []record.Record, opts aggregate.Options) []MetricSummary {
	st := aggregate.Aggregate(candidate, opts)
	base := aggregate.Aggregate(baseline, opts)

	names := []string{aggregate.LogScore}
	seen := map[string]bool{aggregate.LogScore: true, record.KeySeed: true}
	for _, src := range [][]string{st.Names(), base.Names()} {
		for _, name := range src {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names[1:])

	summaries := make([]MetricSummary, 0, len(names))
	for _, name := range names {
		c, b := st.Get(name), base.Get(name)
		summaries = append(summaries, MetricSummary{
			Metric:         name,
			CandidateN:     c.N(),
			CandidateMean:  c.Mean(),
			CandidateSigma: c.Sigma(),
			BaselineN:      b.N(),
			BaselineMean:   b.Mean(),
			BaselineSigma:  b.Sigma(),
			ProbLarger:     c.ProbMeanLarger(b),
		})
	}
	return summaries
}

func WriteTable(summaries []MetricSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tCANDIDATE\tBASELINE\tP(LARGER)")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\n", s.Metric,
			formatMoments(s.CandidateN, s.CandidateMean, s.CandidateSigma),
			formatMoments(s.BaselineN, s.BaselineMean, s.BaselineSigma),
			s.ProbLarger)
	}
	return tw.Flush()
}

func formatMoments(n int, mean, sigma float64) string {
	if n == 0 {
		return "--"
	}
	return fmt.Sprintf("%.3f ± %.3f (n=%d)", mean, sigma, n)
}

func WriteJSON(summaries []MetricSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

// WriteHTML wraps a rendered table in a minimal standalone document.
func WriteHTML(w io.Writer, title, table string) error {
	if title == "" {
		title = "seedbench report"
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n<h1>%s</h1>\n%s\n</body>\n</html>\n",
		html.EscapeString(title), html.EscapeString(title), table)
	return err
}
