package files

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewManagerDefaultLayout(t *testing.T) {
	tmp := t.TempDir()

	mgr, err := NewManager(tmp)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	checks := map[string]string{
		"CardsDir":     filepath.Join(tmp, "cards"),
		"SchedulePath": filepath.Join(tmp, "schedule.json"),
		"HistoryPath":  filepath.Join(tmp, "history.jsonl"),
		"IndexPath":    filepath.Join(tmp, "history.db"),
		"LogPath":      filepath.Join(tmp, "knos.log"),
		"ConfigPath":   filepath.Join(tmp, "config.yaml"),
	}
	got := map[string]string{
		"CardsDir":     mgr.CardsDir(),
		"SchedulePath": mgr.SchedulePath(),
		"HistoryPath":  mgr.HistoryPath(),
		"IndexPath":    mgr.IndexPath(),
		"LogPath":      mgr.LogPath(),
		"ConfigPath":   mgr.ConfigPath(),
	}
	for name, want := range checks {
		if got[name] != want {
			t.Errorf("%s() = %q, want %q", name, got[name], want)
		}
	}
}

func TestNewManagerOverrides(t *testing.T) {
	tmp := t.TempDir()
	elsewhere := filepath.Join(t.TempDir(), "notes")

	mgr, err := NewManager(tmp,
		WithCardsDir(elsewhere),
		WithScheduleFile("state/schedule.json"),
		WithHistoryFile(""),
	)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if mgr.CardsDir() != elsewhere {
		t.Fatalf("CardsDir() = %q, want %q", mgr.CardsDir(), elsewhere)
	}
	if want := filepath.Join(tmp, "state", "schedule.json"); mgr.SchedulePath() != want {
		t.Fatalf("SchedulePath() = %q, want %q", mgr.SchedulePath(), want)
	}
	if want := filepath.Join(tmp, "history.jsonl"); mgr.HistoryPath() != want {
		t.Fatalf("HistoryPath() = %q, want %q (empty override must keep default)", mgr.HistoryPath(), want)
	}
}

func TestEnsureLayoutCreatesDirectories(t *testing.T) {
	tmp := t.TempDir()

	mgr, err := NewManager(filepath.Join(tmp, "home"), WithScheduleFile("state/schedule.json"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := mgr.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	for _, dir := range []string{mgr.BasePath(), mgr.CardsDir(), filepath.Dir(mgr.SchedulePath())} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%q is not a directory", dir)
		}
	}

	// A second call is a no-op.
	if err := mgr.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout second call: %v", err)
	}
}

func TestCardFilesSkipsHiddenAndNonMarkdown(t *testing.T) {
	tmp := t.TempDir()
	mgr, err := NewManager(tmp)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for _, rel := range []string{
		"zeta.md",
		"go/channels.md",
		"go/Select.MD",
		"go/notes.txt",
		".drafts/wip.md",
		"go/.hidden.md",
	} {
		path := filepath.Join(mgr.CardsDir(), filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte("# card\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	got, err := mgr.CardFiles(context.Background())
	if err != nil {
		t.Fatalf("CardFiles: %v", err)
	}

	want := []string{"go/Select.MD", "go/channels.md", "zeta.md"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CardFiles() = %#v, want %#v", got, want)
	}
	if p := mgr.CardPath("go/channels.md"); p != filepath.Join(mgr.CardsDir(), "go", "channels.md") {
		t.Fatalf("CardPath() = %q", p)
	}
}

func TestCardFilesMissingDirectory(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	got, err := mgr.CardFiles(context.Background())
	if err != nil {
		t.Fatalf("CardFiles: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("CardFiles() = %#v, want none", got)
	}
}
