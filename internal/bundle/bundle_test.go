package bundle_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalnine/seedbench/internal/bundle"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestInline(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"sol.cc":   "#include <vector>\n#include \"common.h\"\nint main() {}\n",
		"common.h": "#include \"timers.h\"\nint common;\n",
		"timers.h": "int timers;\n",
	})
	got, err := bundle.Inline(filepath.Join(dir, "sol.cc"), 3, "SUBMISSION")
	if err != nil {
		t.Fatalf("Inline: %v", err)
	}
	if !strings.HasPrefix(got, "#define SUBMISSION\n\n") {
		t.Errorf("missing define prefix: %q", got)
	}
	for _, want := range []string{"#include <vector>", "int common;", "int timers;", "int main() {}"} {
		if !strings.Contains(got, want) {
			t.Errorf("bundle missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, `#include "`) {
		t.Errorf("local include left behind:\n%s", got)
	}
}

func TestInlineDepthLimit(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"sol.cc":   "#include \"common.h\"\n",
		"common.h": "#include \"timers.h\"\n",
		"timers.h": "int timers;\n",
	})
	got, err := bundle.Inline(filepath.Join(dir, "sol.cc"), 1, "")
	if err != nil {
		t.Fatalf("Inline: %v", err)
	}
	if got != "#include \"timers.h\"\n" {
		t.Errorf("got %q", got)
	}
}

func TestInlineMissingHeader(t *testing.T) {
	dir := writeFiles(t, map[string]string{"sol.cc": "#include \"nope.h\"\n"})
	if _, err := bundle.Inline(filepath.Join(dir, "sol.cc"), 3, "SUBMISSION"); err == nil {
		t.Error("expected error for missing header")
	}
}

func TestToClipboard(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clip.txt")
	if err := bundle.ToClipboard(context.Background(), "cat > "+out, "payload"); err != nil {
		t.Fatalf("ToClipboard: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("got %q, want %q", data, "payload")
	}
}
