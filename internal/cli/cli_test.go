package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testNow is the clock every command in these tests runs on.
var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func executeCommand(t *testing.T, home, stdin string, args ...string) string {
	t.Helper()
	out, err := executeCommandErr(t, home, stdin, args...)
	if err != nil {
		t.Fatalf("Execute(%q): %v\n%s", args, err, out)
	}
	return out
}

func executeCommandErr(t *testing.T, home, stdin string, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.now = func() time.Time { return testNow }
	cmd := newRootCommand(context.Background(), a)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--home", home))
	err := cmd.Execute()
	return buf.String(), err
}

func writeCard(t *testing.T, home, rel, content string) {
	t.Helper()
	path := filepath.Join(home, "cards", filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func assertContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output %q missing substring %q", output, want)
	}
}

func assertNotContains(t *testing.T, output, want string) {
	t.Helper()
	if strings.Contains(output, want) {
		t.Fatalf("output %q unexpectedly contained substring %q", output, want)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}
