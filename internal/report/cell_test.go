package report_test

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/seedbench/internal/aggregate"
	"github.com/signalnine/seedbench/internal/record"
	"github.com/signalnine/seedbench/internal/report"
)

var scoreRe = regexp.MustCompile(`<br>score = ([0-9.e+-]+)`)

func displayedScore(t *testing.T, html string) float64 {
	t.Helper()
	m := scoreRe.FindStringSubmatch(html)
	require.NotNil(t, m, "no score line in %s", html)
	v, err := strconv.ParseFloat(m[1], 64)
	require.NoError(t, err)
	return v
}

func TestColorProb(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0.5, "#000"},
		{0, "#f00"},
		{1, "#0f0"},
		{0.25, "#700"},
		{0.75, "#070"},
		{0.49, "#000"},
		{0.9694, "#0e0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, report.ColorProb(tt.p), "p=%v", tt.p)
	}
}

func TestColorProbChannels(t *testing.T) {
	for p := 0.0; p < 0.5; p += 0.05 {
		c := report.ColorProb(p)
		assert.True(t, strings.HasSuffix(c, "00"), "p=%v gave %s", p, c)
	}
	for p := 0.55; p <= 1; p += 0.05 {
		c := report.ColorProb(p)
		assert.True(t, c[1] == '0' && c[3] == '0', "p=%v gave %s", p, c)
	}
}

func TestRenderCell(t *testing.T) {
	candidate := []record.Record{
		{"score": 100, "seed": 1, "time": 1.0, "x": 5},
		{"score": 200, "seed": 2, "time": 1.1, "x": 7},
	}
	baseline := []record.Record{
		{"score": 50, "seed": 3, "time": 0.9, "x": 5},
		{"score": 60, "seed": 4, "time": 1.0, "x": 5},
	}
	html := report.Cell{Options: aggregate.DefaultOptions()}.Render(candidate, baseline)

	assert.True(t, strings.HasPrefix(html,
		`<span style="font-size:125%; font-weight:bold; color:#0e0">log_score = <span title=`), html)
	assert.InDelta(t, math.Exp((math.Log(100)+math.Log(200))/2), displayedScore(t, html), 1e-9)
	assert.InDelta(t, 141.42, displayedScore(t, html), 0.01)

	xLine := `<br>x = <span style="color:#070"><span title="5..7, 2 items">6.000 &plusmn; <i>1.414</i></span></span>`
	assert.Contains(t, html, xLine)
	assert.Contains(t, html, "<br>seed = [1 2]")
	assert.Less(t, strings.Index(html, "<br>seed ="), strings.Index(html, "<br>x ="))
	assert.NotContains(t, html, "<br>time =")
	assert.NotContains(t, html, "<br>log_score =")
}

func TestRenderCellEmptyCandidate(t *testing.T) {
	baseline := []record.Record{
		{"score": 50, "seed": 3, "time": 0.9, "x": 5},
	}
	html := report.Cell{Options: aggregate.DefaultOptions()}.Render(nil, baseline)
	assert.Contains(t, html, `color:#000">log_score = --</span>`)
	assert.Contains(t, html, "<br>score = 1")
	assert.Equal(t, 1.0, displayedScore(t, html))
	assert.Contains(t, html, "<br>seed = []")
	assert.NotContains(t, html, "<br>x =")
}

func TestRenderCellMetricMissingFromBaseline(t *testing.T) {
	candidate := []record.Record{
		{"score": 10, "seed": 1, "moves": 3},
		{"score": 12, "seed": 2, "moves": 9},
	}
	baseline := []record.Record{{"score": 10, "seed": 1}}
	html := report.Cell{Options: aggregate.DefaultOptions()}.Render(candidate, baseline)
	assert.Contains(t, html, `<br>moves = <span style="color:#000">`)
}

func TestRenderCellTruncatesSeeds(t *testing.T) {
	var candidate []record.Record
	for i := 1; i <= 30; i++ {
		candidate = append(candidate, record.Record{"score": float64(i), "seed": strconv.Itoa(i)})
	}
	html := report.Cell{Options: aggregate.DefaultOptions()}.Render(candidate, nil)

	full := "[1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 17 18 19 20"
	assert.Contains(t, html, "<br>seed = "+full[:40]+"...")
	assert.NotContains(t, html, "30]")
}

func TestRenderCellTruncatesMultibyteSeeds(t *testing.T) {
	var candidate []record.Record
	for i := 0; i < 20; i++ {
		candidate = append(candidate, record.Record{"score": 1, "seed": "xxéy"})
	}
	html := report.Cell{Options: aggregate.DefaultOptions()}.Render(candidate, nil)
	require.True(t, utf8.ValidString(html), "invalid UTF-8: %q", html)

	full := "[" + strings.Repeat("xxéy ", 20)
	assert.Contains(t, html, "<br>seed = "+string([]rune(full)[:40])+"...")
}

func TestRenderCellLargeScore(t *testing.T) {
	candidate := []record.Record{{"score": 1234567, "seed": 1}, {"score": 1234567, "seed": 2}}
	html := report.Cell{Options: aggregate.DefaultOptions()}.Render(candidate, nil)
	assert.NotContains(t, html, "e+06")
	assert.InDelta(t, 1234567, displayedScore(t, html), 1e-6)
}

func TestRenderCellFailedRuns(t *testing.T) {
	candidate := []record.Record{{"score": 0, "seed": 1}, {"score": 0, "seed": 2}}
	baseline := []record.Record{{"score": 5, "seed": 1}, {"score": 6, "seed": 2}}
	html := report.Cell{Options: aggregate.DefaultOptions()}.Render(candidate, baseline)
	// Every run failed: log_score is the constant penalty and the comparison
	// is certain.
	assert.Contains(t, html, `color:#f00">log_score = -100</span>`)
}
