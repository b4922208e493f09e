package session

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrProjectNotFound means no session directory matches the working directory.
	ErrProjectNotFound = errors.New("could not find project directory")
	// ErrSessionNotFound means the project directory holds no session log.
	ErrSessionNotFound = errors.New("could not find session file")
)

const logExt = ".jsonl"

// Locator finds the active session log under the assistant's projects root.
type Locator struct {
	root string
}

// NewLocator creates a Locator rooted at projectsDir (e.g. ~/.claude/projects).
func NewLocator(projectsDir string) *Locator {
	return &Locator{root: projectsDir}
}

// ProjectKey converts a working directory to the assistant's directory name:
// path separators and spaces become "-", and one leading "-" is dropped.
func ProjectKey(cwd string) string {
	key := strings.ReplaceAll(filepath.ToSlash(cwd), "/", "-")
	key = strings.ReplaceAll(key, " ", "-")
	return strings.TrimPrefix(key, "-")
}

// ProjectDir resolves the session directory for cwd in two steps: an exact
// lookup of ProjectKey(cwd), then a scan for any directory whose name contains
// the base name of cwd (case-insensitive). The scan returns the first hit in
// directory listing order; it does not disambiguate between several hits.
func (l *Locator) ProjectDir(cwd string) (string, error) {
	if dir, ok := l.exact(cwd); ok {
		return dir, nil
	}
	if dir, ok := l.scan(cwd); ok {
		slog.Debug("project directory matched by name scan", "cwd", cwd, "dir", dir)
		return dir, nil
	}
	return "", ErrProjectNotFound
}

func (l *Locator) exact(cwd string) (string, bool) {
	dir := filepath.Join(l.root, ProjectKey(cwd))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

func (l *Locator) scan(cwd string) (string, bool) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		slog.Debug("projects directory unreadable", "root", l.root, "err", err)
		return "", false
	}

	needle := strings.ToLower(filepath.Base(cwd))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name()), needle) {
			return filepath.Join(l.root, e.Name()), true
		}
	}
	return "", false
}

// LatestLog returns the most recently modified session log in dir.
// Ties keep whichever file the listing yielded first.
func (l *Locator) LatestLog(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ErrSessionNotFound
	}

	var (
		latest   string
		latestNs int64
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), logExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		ns := info.ModTime().UnixNano()
		if latest == "" || ns > latestNs {
			latest = filepath.Join(dir, e.Name())
			latestNs = ns
		}
	}

	if latest == "" {
		return "", ErrSessionNotFound
	}
	return latest, nil
}

// Find chains ProjectDir and LatestLog for cwd.
func (l *Locator) Find(cwd string) (string, error) {
	dir, err := l.ProjectDir(cwd)
	if err != nil {
		return "", err
	}
	return l.LatestLog(dir)
}
