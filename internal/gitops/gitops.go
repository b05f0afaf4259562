package gitops

import (
	"fmt"
	"os/exec"
	"strings"
)

// Revision describes the commit checked out in dir, with a "-dirty" suffix
// when the worktree has uncommitted changes. It returns "" when dir is not
// inside a git repository or has no commits.
func Revision(dir string) string {
	inside := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	inside.Dir = dir
	if out, err := inside.Output(); err != nil || strings.TrimSpace(string(out)) != "true" {
		return ""
	}
	rev, err := Describe(dir)
	if err != nil {
		return ""
	}
	return rev
}

func Describe(dir string) (string, error) {
	cmd := exec.Command("git", "describe", "--always", "--dirty")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git describe: %s: %w", out, err)
	}
	return strings.TrimSpace(string(out)), nil
}
