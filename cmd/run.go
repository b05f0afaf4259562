package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/signalnine/seedbench/internal/config"
	"github.com/signalnine/seedbench/internal/docker"
	"github.com/signalnine/seedbench/internal/gitops"
	"github.com/signalnine/seedbench/internal/record"
	"github.com/signalnine/seedbench/internal/report"
	"github.com/signalnine/seedbench/internal/result"
	"github.com/signalnine/seedbench/internal/runner"
	"github.com/signalnine/seedbench/internal/stats"
	"github.com/spf13/cobra"
)

var (
	flagSeeds    string
	flagParallel int
	flagResume   string
	flagNoBuild  bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the solution and score it on every seed",
		RunE:  runBenchmark,
	}
	cmd.Flags().StringVar(&flagSeeds, "seeds", "", "override seeds, e.g. 1-50 or 3,7,10-12")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "override max concurrent scorer runs")
	cmd.Flags().StringVar(&flagResume, "resume", "", "add missing seeds to an existing run (path, latest or baseline)")
	cmd.Flags().BoolVar(&flagNoBuild, "no-build", false, "skip the build step")
	return cmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	seeds := cfg.Seeds.All()
	if flagSeeds != "" {
		seeds, err = parseSeeds(flagSeeds)
		if err != nil {
			return err
		}
	}
	parallel := cfg.Parallel
	if flagParallel > 0 {
		parallel = flagParallel
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !flagNoBuild && cfg.Solution.Build != "" {
		fmt.Printf("Building: %s\n", cfg.Solution.Build)
		if err := runner.Build(ctx, cfg.Solution.Build, cfg.Solution.Dir); err != nil {
			return err
		}
	}

	var runDir string
	if flagResume != "" {
		runDir, err = resolveRunDir(cfg.Results.Dir, flagResume)
		if err != nil {
			return err
		}
		existing, err := result.ReadRecords(runDir)
		if err != nil {
			return err
		}
		seeds = pendingSeeds(seeds, result.DoneSeeds(existing))
		fmt.Printf("Resuming %s (%d records stored, %d seeds to go)\n", runDir, len(existing), len(seeds))
	} else {
		runDir, err = result.CreateRunDir(cfg.Results.Dir)
		if err != nil {
			return err
		}
		manifest := result.NewManifest(cfg.Name, cfg.Solution.Command, cfg.Scorer.Command, gitops.Revision(cfg.Solution.Dir), seeds)
		if err := result.WriteManifest(runDir, manifest); err != nil {
			return err
		}
		fmt.Printf("Run directory: %s\n", runDir)
	}

	store, err := result.OpenStore(runDir)
	if err != nil {
		return err
	}
	defer store.Close()

	scorer := &runner.Scorer{
		Command:     cfg.Scorer.Command,
		Solution:    cfg.Solution.Command,
		WorkDir:     cfg.Solution.Dir,
		Env:         scorerEnv(cfg),
		Image:       cfg.Scorer.Image,
		CPULimit:    cfg.Scorer.CPUs,
		MemoryLimit: cfg.Scorer.MemoryMB << 20,
		Timeout:     time.Duration(cfg.Scorer.TimeoutSeconds) * time.Second,
	}
	if scorer.Image != "" {
		scorer.Docker, err = docker.NewRunner()
		if err != nil {
			return err
		}
		defer scorer.Docker.Close()
	}
	_, errs := runner.RunSeeds(ctx, scorer, seeds, parallel, func(r record.Record) error {
		fmt.Printf("%s %s\n", r.Seed(), stats.FormatFloat(r.Score()))
		return store.Append(r)
	})
	for _, err := range errs {
		fmt.Printf("  ERROR: %v\n", err)
	}

	baselineDir, err := result.Resolve(cfg.Results.Dir, result.BaselineLink)
	if err != nil {
		log.Printf("warning: %v", err)
	}
	fmt.Println("\n--- Results ---")
	return report.Generate(runDir, baselineDir, "table", os.Stdout, cfg.Report.ReportOptions())
}

// scorerEnv merges the secrets env file under the explicit scorer env.
func scorerEnv(cfg *config.Config) map[string]string {
	env := map[string]string{}
	if cfg.Secrets.EnvFile != "" {
		secrets, err := config.LoadEnvFile(cfg.Secrets.EnvFile)
		if err != nil {
			log.Printf("warning: could not load secrets: %v", err)
		}
		for k, v := range secrets {
			env[k] = v
		}
	}
	for k, v := range cfg.Scorer.Env {
		env[k] = v
	}
	return env
}

// resolveRunDir accepts a run directory path or one of the latest/baseline
// link names.
func resolveRunDir(resultsDir, arg string) (string, error) {
	if arg == result.LatestLink || arg == result.BaselineLink {
		dir, err := result.Resolve(resultsDir, arg)
		if err != nil {
			return "", err
		}
		if dir == "" {
			return "", fmt.Errorf("no %s run in %s", arg, resultsDir)
		}
		return dir, nil
	}
	resolved, err := filepath.EvalSymlinks(arg)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	return resolved, nil
}

// parseSeeds reads a comma-separated list of seeds and inclusive ranges.
func parseSeeds(s string) ([]int, error) {
	var seeds []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q", part)
		}
		to := from
		if isRange {
			to, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid seed range %q", part)
			}
			if to < from {
				return nil, fmt.Errorf("seed range %q is reversed", part)
			}
		}
		for i := from; i <= to; i++ {
			seeds = append(seeds, i)
		}
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds in %q", s)
	}
	return seeds, nil
}

func pendingSeeds(seeds []int, done map[string]bool) []int {
	var pending []int
	for _, s := range seeds {
		if !done[strconv.Itoa(s)] {
			pending = append(pending, s)
		}
	}
	return pending
}
