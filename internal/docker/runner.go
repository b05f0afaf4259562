// Package docker runs scorer commands inside one-shot containers.
package docker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
)

// TimeoutExitCode is reported for containers killed after RunOpts.Timeout.
const TimeoutExitCode = 124

// RunOpts describes a one-shot container that runs Command with WorkDir
// bind-mounted at /workspace.
type RunOpts struct {
	Image   string
	Command []string
	WorkDir string
	Env     map[string]string
	Timeout time.Duration
	UserID  string
	// CPULimit is in cores, MemoryLimit in bytes. Zero means unlimited.
	CPULimit    float64
	MemoryLimit int64
}

type RunResult struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
	// Output is the combined stdout and stderr of the container.
	Output []byte
}

// Runner shares one Docker API client across many container runs.
type Runner struct {
	cli *client.Client
}

func NewRunner() (*Runner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	return &Runner{cli: cli}, nil
}

func (r *Runner) Close() error {
	return r.cli.Close()
}

// Run creates, starts and waits for a container, then removes it. A run
// that outlives opts.Timeout is killed and reported as TimedOut; a cancelled
// ctx is returned as an error.
func (r *Runner) Run(ctx context.Context, opts *RunOpts) (*RunResult, error) {
	createResp, err := r.cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerConfig(opts),
		HostConfig: hostConfig(opts),
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	id := createResp.ID
	defer r.cli.ContainerRemove(context.Background(), id, client.ContainerRemoveOptions{Force: true})

	start := time.Now()
	if _, err := r.cli.ContainerStart(ctx, id, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	waitCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	defer cancel()

	wait := r.cli.ContainerWait(waitCtx, id, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-wait.Error:
			if err == nil {
				continue
			}
			r.cli.ContainerKill(context.Background(), id, client.ContainerKillOptions{Signal: "SIGKILL"})
			if ctx.Err() != nil {
				return nil, fmt.Errorf("waiting for container: %w", ctx.Err())
			}
			return &RunResult{
				ExitCode: TimeoutExitCode,
				TimedOut: true,
				Duration: time.Since(start),
				Output:   r.logs(id),
			}, nil
		case status := <-wait.Result:
			return &RunResult{
				ExitCode: int(status.StatusCode),
				Duration: time.Since(start),
				Output:   r.logs(id),
			}, nil
		}
	}
}

// RunContainer runs a single container with a throwaway client.
func RunContainer(ctx context.Context, opts *RunOpts) (*RunResult, error) {
	r, err := NewRunner()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Run(ctx, opts)
}

func containerConfig(opts *RunOpts) *container.Config {
	env := make([]string, 0, len(opts.Env))
	for k, v := range opts.Env {
		env = append(env, k+"="+v)
	}
	// A TTY keeps the log stream unmultiplexed so it can be read as plain
	// text.
	cfg := &container.Config{
		Image:      opts.Image,
		Cmd:        opts.Command,
		Env:        env,
		WorkingDir: "/workspace",
		Tty:        true,
		Labels:     map[string]string{"seedbench": "true"},
	}
	if opts.UserID != "" {
		cfg.User = opts.UserID
	}
	return cfg
}

func hostConfig(opts *RunOpts) *container.HostConfig {
	initTrue := true
	cfg := &container.HostConfig{
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: opts.WorkDir,
			Target: "/workspace",
		}},
		Init: &initTrue,
	}
	if opts.CPULimit > 0 {
		cfg.NanoCPUs = int64(opts.CPULimit * 1e9)
	}
	if opts.MemoryLimit > 0 {
		cfg.Memory = opts.MemoryLimit
	}
	return cfg
}

func (r *Runner) logs(id string) []byte {
	rc, err := r.cli.ContainerLogs(context.Background(), id, client.ContainerLogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil || rc == nil {
		return nil
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return data
}
