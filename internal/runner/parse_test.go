package runner_test

import (
	"reflect"
	"testing"

	"github.com/signalnine/seedbench/internal/record"
	"github.com/signalnine/seedbench/internal/runner"
)

func TestParseOutput(t *testing.T) {
	out := "Moves: 12\nScore = 4821\n# iterations = 300\n# density = 0.35\n# longest_path_stats = (3, 5, 8)\n# phase = greedy\n"
	rec := record.Record{}
	if !runner.ParseOutput(out, rec) {
		t.Fatal("expected score to be found")
	}
	want := record.Record{
		"score":              4821.0,
		"iterations":         300.0,
		"density":            0.35,
		"longest_path_stats": []any{3.0, 5.0, 8.0},
		"phase":              "greedy",
	}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("got %v, want %v", rec, want)
	}
}

func TestParseOutputNoScore(t *testing.T) {
	rec := record.Record{}
	if runner.ParseOutput("Score: 12\n# moves = 3\n", rec) {
		t.Error("expected no score")
	}
	if rec["moves"] != 3.0 {
		t.Errorf("moves: got %v", rec["moves"])
	}
}

func TestParseOutputCRLF(t *testing.T) {
	rec := record.Record{}
	if !runner.ParseOutput("Score = 10\r\n", rec) {
		t.Fatal("expected score with CRLF line ending")
	}
	if rec.Score() != 10 {
		t.Errorf("score: got %v", rec.Score())
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", 42.0},
		{"-1.5e3", -1500.0},
		{"True", true},
		{"[1, 2]", []any{1.0, 2.0}},
		{"(1, 2)", []any{1.0, 2.0}},
		{"{'a': 1}", map[string]any{"a": 1.0}},
		{"hello world", "hello world"},
		{"[broken", "[broken"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := runner.ParseValue(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
