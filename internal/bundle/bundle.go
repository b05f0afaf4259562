// Package bundle packs a C++ solution and its local headers into a single
// submission file.
package bundle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var includeLine = regexp.MustCompile(`#include "(.+\.h)"`)

// Inline reads entry and substitutes each local #include "x.h" with the
// header's contents, for depth passes so headers pulled in by headers get
// expanded too. Headers resolve relative to entry's directory. The result
// starts with "#define <define>" so the code can tell it is a submission.
func Inline(entry string, depth int, define string) (string, error) {
	data, err := os.ReadFile(entry)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", entry, err)
	}
	dir := filepath.Dir(entry)
	text := string(data)

	for i := 0; i < depth; i++ {
		var readErr error
		text = includeLine.ReplaceAllStringFunc(text, func(m string) string {
			name := includeLine.FindStringSubmatch(m)[1]
			header, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				if readErr == nil {
					readErr = fmt.Errorf("inlining %s: %w", name, err)
				}
				return m
			}
			return string(header)
		})
		if readErr != nil {
			return "", readErr
		}
	}

	if define != "" {
		text = "#define " + define + "\n\n" + text
	}
	return text, nil
}

// ToClipboard pipes text into the clipboard command, e.g.
// "xsel --clipboard --input".
func ToClipboard(ctx context.Context, cmdline, text string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("clipboard %q: %s: %w", cmdline, out, err)
	}
	return nil
}
