package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/signalnine/seedbench/internal/docker"
	"github.com/signalnine/seedbench/internal/record"
)

// Scorer runs the external scoring program for one seed at a time.
type Scorer struct {
	// Command is the scorer command line; {command} and {seed} are replaced
	// with Solution and the seed.
	Command  string
	Solution string
	WorkDir  string
	Env      map[string]string
	// Image, when set, runs the scorer inside that container image with
	// WorkDir mounted at /workspace, using Docker.
	Image       string
	Docker      *docker.Runner
	CPULimit    float64
	MemoryLimit int64
	Timeout     time.Duration
}

// CommandLine expands the scorer command for seed.
func (s *Scorer) CommandLine(seed int) string {
	return strings.NewReplacer(
		"{command}", s.Solution,
		"{seed}", strconv.Itoa(seed),
	).Replace(s.Command)
}

// Run scores one seed. The returned record carries seed, time, score and any
// metrics the solution printed.
func (s *Scorer) Run(ctx context.Context, seed int) (record.Record, error) {
	cmdline := s.CommandLine(seed)
	start := time.Now()

	var stdout, stderr []byte
	var err error
	if s.Image != "" {
		stdout, err = s.runContainer(ctx, cmdline)
	} else {
		stdout, stderr, err = s.runLocal(ctx, cmdline)
	}
	if err != nil {
		return nil, fmt.Errorf("seed=%d: %w\nout=%s\nerr=%s", seed, err, stdout, stderr)
	}

	rec := record.Record{
		record.KeySeed: strconv.Itoa(seed),
		record.KeyTime: time.Since(start).Seconds(),
	}
	found := ParseOutput(string(stdout), rec)
	found = ParseOutput(string(stderr), rec) || found
	if !found {
		return nil, fmt.Errorf("seed=%d: no score in scorer output\nout=%s\nerr=%s", seed, stdout, stderr)
	}
	return rec, nil
}

func (s *Scorer) runLocal(ctx context.Context, cmdline string) ([]byte, []byte, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Dir = s.WorkDir
	cmd.WaitDelay = time.Second
	cmd.Env = os.Environ()
	for k, v := range s.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("scorer timed out after %s", s.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("scorer exited with status %d", exitErr.ExitCode())
		}
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("running scorer: %w", err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

func (s *Scorer) runContainer(ctx context.Context, cmdline string) ([]byte, error) {
	workDir, err := filepath.Abs(s.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("resolving work dir: %w", err)
	}
	opts := &docker.RunOpts{
		Image:       s.Image,
		Command:     []string{"sh", "-c", cmdline},
		WorkDir:     workDir,
		Env:         s.Env,
		Timeout:     s.Timeout,
		UserID:      fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
		CPULimit:    s.CPULimit,
		MemoryLimit: s.MemoryLimit,
	}
	var res *docker.RunResult
	if s.Docker != nil {
		res, err = s.Docker.Run(ctx, opts)
	} else {
		res, err = docker.RunContainer(ctx, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("running container: %w", err)
	}
	if res.TimedOut {
		return res.Output, fmt.Errorf("scorer timed out after %s", s.Timeout)
	}
	if res.ExitCode != 0 {
		return res.Output, fmt.Errorf("scorer exited with status %d", res.ExitCode)
	}
	return res.Output, nil
}

// Build runs the solution's compile step in dir.
func Build(ctx context.Context, cmdline, dir string) error {
	if strings.TrimSpace(cmdline) == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("build: %s: %w", out, err)
	}
	return nil
}

// RunSeeds scores every seed with at most parallel scorer processes.
// onRecord, if set, is called for each finished record, one call at a time.
// Records come back in seed order; seeds that failed are left out and their
// errors returned.
func RunSeeds(ctx context.Context, s *Scorer, seeds []int, parallel int, onRecord func(record.Record) error) ([]record.Record, []error) {
	slots := make([]record.Record, len(seeds))
	var mu sync.Mutex
	jobs := make([]Job, len(seeds))
	for i, seed := range seeds {
		jobs[i] = func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("seed=%d: %w", seed, err)
			}
			rec, err := s.Run(ctx, seed)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if onRecord != nil {
				if err := onRecord(rec); err != nil {
					return fmt.Errorf("seed=%d: %w", seed, err)
				}
			}
			slots[i] = rec
			return nil
		}
	}
	errs := RunPool(parallel, jobs)

	records := make([]record.Record, 0, len(seeds))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, errs
}
