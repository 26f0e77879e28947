package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644

	cardExtension = ".md"
)

// Manager centralizes where cards, the schedule, and the history log live on
// disk. Every path is absolute once the manager is constructed.
type Manager struct {
	basePath     string
	cardsDir     string
	scheduleFile string
	historyFile  string
	indexFile    string
	logFile      string
}

// Option overrides one location of the default layout. Empty values keep the default.
type Option func(*Manager)

// WithCardsDir points the manager at a different content directory.
func WithCardsDir(path string) Option {
	return func(m *Manager) { setIfPresent(&m.cardsDir, path) }
}

// WithScheduleFile overrides the schedule store location.
func WithScheduleFile(path string) Option {
	return func(m *Manager) { setIfPresent(&m.scheduleFile, path) }
}

// WithHistoryFile overrides the history log location.
func WithHistoryFile(path string) Option {
	return func(m *Manager) { setIfPresent(&m.historyFile, path) }
}

// WithIndexFile overrides the SQLite history index location.
func WithIndexFile(path string) Option {
	return func(m *Manager) { setIfPresent(&m.indexFile, path) }
}

// WithLogFile overrides the application log location.
func WithLogFile(path string) Option {
	return func(m *Manager) { setIfPresent(&m.logFile, path) }
}

func setIfPresent(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}

// NewManager constructs a Manager rooted at the provided directory. If basePath
// is empty, it falls back to ~/.knos (or another location determined by
// ResolveBasePath). Relative overrides are resolved against basePath.
func NewManager(basePath string, opts ...Option) (*Manager, error) {
	var err error
	if basePath == "" {
		basePath, err = ResolveBasePath()
		if err != nil {
			return nil, err
		}
	}
	basePath, err = ExpandPath(basePath)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		basePath:     abs,
		cardsDir:     "cards",
		scheduleFile: "schedule.json",
		historyFile:  "history.jsonl",
		indexFile:    "history.db",
		logFile:      "knos.log",
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, p := range []*string{&m.cardsDir, &m.scheduleFile, &m.historyFile, &m.indexFile, &m.logFile} {
		resolved, err := m.resolve(*p)
		if err != nil {
			return nil, err
		}
		*p = resolved
	}
	return m, nil
}

func (m *Manager) resolve(path string) (string, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.basePath, path)
	}
	return filepath.Clean(path), nil
}

// BasePath returns the knos home directory.
func (m *Manager) BasePath() string { return m.basePath }

// CardsDir returns the directory scanned for card files.
func (m *Manager) CardsDir() string { return m.cardsDir }

// SchedulePath returns the schedule store file.
func (m *Manager) SchedulePath() string { return m.scheduleFile }

// HistoryPath returns the append-only history log.
func (m *Manager) HistoryPath() string { return m.historyFile }

// IndexPath returns the SQLite database used for history reports.
func (m *Manager) IndexPath() string { return m.indexFile }

// LogPath returns the application log file.
func (m *Manager) LogPath() string { return m.logFile }

// ConfigPath returns the optional YAML configuration file.
func (m *Manager) ConfigPath() string {
	return filepath.Join(m.basePath, "config.yaml")
}

// EnsureLayout guarantees the home and cards directories exist, together with
// the parent directories of every data file.
func (m *Manager) EnsureLayout() error {
	if m == nil {
		return errors.New("files.Manager is nil")
	}

	dirs := []string{
		m.basePath,
		m.cardsDir,
		filepath.Dir(m.scheduleFile),
		filepath.Dir(m.historyFile),
		filepath.Dir(m.indexFile),
		filepath.Dir(m.logFile),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("create directories: %w", err)
		}
	}
	return nil
}

// CardFiles lists every markdown card below CardsDir as slash-separated paths
// relative to it, sorted lexically. Hidden files and directories are skipped.
// A missing cards directory yields no cards.
func (m *Manager) CardFiles(ctx context.Context) ([]string, error) {
	if m == nil {
		return nil, errors.New("files.Manager is nil")
	}

	var cards []string
	err := filepath.WalkDir(m.cardsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == m.cardsDir {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != m.cardsDir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), cardExtension) {
			return nil
		}
		rel, err := filepath.Rel(m.cardsDir, path)
		if err != nil {
			return err
		}
		cards = append(cards, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk cards directory: %w", err)
	}

	sort.Strings(cards)
	return cards, nil
}

// CardPath converts a card path relative to CardsDir into an absolute path.
func (m *Manager) CardPath(rel string) string {
	return filepath.Join(m.cardsDir, filepath.FromSlash(rel))
}
