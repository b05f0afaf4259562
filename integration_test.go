//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/signalnine/seedbench/internal/config"
	"github.com/signalnine/seedbench/internal/record"
	"github.com/signalnine/seedbench/internal/report"
	"github.com/signalnine/seedbench/internal/result"
	"github.com/signalnine/seedbench/internal/runner"
)

// writeScorer creates a shell scorer that prints a seed-dependent score and
// one metric, the way a local tester does.
func writeScorer(t *testing.T, dir string, offset int) string {
	t.Helper()
	script := "#!/bin/sh\n" +
		"seed=$1\n" +
		"echo \"# density = 0.$(( seed % 9 ))\" >&2\n" +
		"echo \"# n = $(( 20 + seed ))\" >&2\n" +
		"echo \"Score = $(( seed * 10 + " + strconv.Itoa(offset) + " ))\"\n"
	path := filepath.Join(dir, "score.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func runOnce(t *testing.T, resultsDir, scorerPath string, seeds []int) string {
	t.Helper()
	runDir, err := result.CreateRunDir(resultsDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := result.WriteManifest(runDir, result.NewManifest("it", "./main", scorerPath, "", seeds)); err != nil {
		t.Fatal(err)
	}
	store, err := result.OpenStore(runDir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	s := &runner.Scorer{
		Command:  scorerPath + " {seed}",
		Solution: "./main",
		WorkDir:  filepath.Dir(scorerPath),
		Timeout:  10 * time.Second,
	}
	records, errs := runner.RunSeeds(context.Background(), s, seeds, 4, func(r record.Record) error {
		return store.Append(r)
	})
	if len(errs) != 0 {
		t.Fatalf("RunSeeds errors: %v", errs)
	}
	if len(records) != len(seeds) {
		t.Fatalf("got %d records, want %d", len(records), len(seeds))
	}
	return runDir
}

func TestEndToEnd(t *testing.T) {
	work := t.TempDir()
	resultsDir := filepath.Join(work, "results")
	seeds := []int{1, 2, 3, 4, 5, 6, 7, 8}

	baseScorer := writeScorer(t, t.TempDir(), 0)
	baseDir := runOnce(t, resultsDir, baseScorer, seeds)
	if err := result.MarkBaseline(resultsDir, baseDir); err != nil {
		t.Fatal(err)
	}

	candScorer := writeScorer(t, t.TempDir(), 5)
	candDir := runOnce(t, resultsDir, candScorer, seeds)

	stored, err := result.ReadRecords(candDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.DoneSeeds(stored)) != len(seeds) {
		t.Errorf("stored %d seeds, want %d", len(result.DoneSeeds(stored)), len(seeds))
	}

	cfg := &config.Config{}
	cfg.Report.Rows = report.AxisSize
	cfg.Report.Columns = report.AxisDensity
	opts := cfg.Report.ReportOptions()

	var html bytes.Buffer
	if err := report.Generate(candDir, baseDir, "html", &html, opts); err != nil {
		t.Fatalf("Generate html: %v", err)
	}
	out := html.String()
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "log_score = ") {
		t.Errorf("html report missing table: %s", out)
	}
	// Every candidate score is higher, so the overview cell leans green.
	if strings.Contains(out, `color:#f00">log_score`) {
		t.Errorf("candidate should not be marked worse: %s", out)
	}

	var table bytes.Buffer
	if err := report.Generate(candDir, baseDir, "table", &table, opts); err != nil {
		t.Fatalf("Generate table: %v", err)
	}
	if !strings.Contains(table.String(), "log_score") {
		t.Errorf("table report missing log_score: %s", table.String())
	}

	runs, err := result.ListRuns(resultsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns returned %d runs, want 2", len(runs))
	}
}
