package runner

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/signalnine/seedbench/internal/record"
)

var (
	scoreLine  = regexp.MustCompile(`^Score = (\d+(?:\.\d+)?)$`)
	metricLine = regexp.MustCompile(`^# (\w+) = (.*)$`)
)

// ParseOutput scans scorer output for "Score = N" and "# key = value" lines
// and stores what it finds in rec. It reports whether a score was seen.
func ParseOutput(out string, rec record.Record) bool {
	found := false
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if m := scoreLine.FindStringSubmatch(line); m != nil {
			score, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				rec[record.KeyScore] = score
				found = true
			}
			continue
		}
		if m := metricLine.FindStringSubmatch(line); m != nil {
			rec[m[1]] = ParseValue(m[2])
		}
	}
	return found
}

// ParseValue interprets a metric value printed by the solver: a number, a
// JSON-like list or object (tuples in parentheses are read as lists),
// true/false, or otherwise the raw text.
func ParseValue(s string) any {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "True", "true":
		return true
	case "False", "false":
		return false
	}
	candidate := s
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		candidate = "[" + s[1:len(s)-1] + "]"
	}
	if strings.HasPrefix(candidate, "[") || strings.HasPrefix(candidate, "{") {
		var v any
		if err := json.Unmarshal([]byte(strings.ReplaceAll(candidate, "'", `"`)), &v); err == nil {
			return v
		}
	}
	return s
}
