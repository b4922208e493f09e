package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctxarchive/ctxarchive/internal/config"
	"github.com/ctxarchive/ctxarchive/internal/extract"
	"github.com/ctxarchive/ctxarchive/internal/shared/stringutils"
)

// Running-log limits, in characters and items.
const (
	logStateLen    = 300
	logItemLen     = 100
	logMaxDecision = 3
	logMaxLesson   = 2
)

const runningLogHeader = `# Compressed Message History

> Auto-archived conversation context for RAG retrieval.
> This file is updated automatically when context exceeds threshold.

---

`

// Store is the on-disk archive: <root>/archives/*.md and <root>/messages.md.
// Nothing is locked; concurrent runs may interleave running-log appends.
type Store struct {
	root        string
	archivesDir string
	runningLog  string
}

// NewStore creates a Store from cfg. Directories are created lazily on write,
// so constructing a Store never touches the filesystem.
func NewStore(cfg config.Config) *Store {
	return &Store{
		root:        cfg.ArchiveRoot(),
		archivesDir: cfg.ArchivesPath(),
		runningLog:  cfg.RunningLogPath(),
	}
}

// WriteArchive renders res and writes it to a new dated file, returning its
// path. A second archive in the same minute gets a numeric suffix instead of
// replacing the earlier file.
func (s *Store) WriteArchive(res extract.Result, project, runID string) (string, error) {
	doc, err := Render(res, project, runID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.archivesDir, 0o755); err != nil {
		return "", fmt.Errorf("create archives dir: %w", err)
	}

	stamp := res.Timestamp.Format(fileStampLayout)
	for n := 1; ; n++ {
		name := "session-" + stamp + ".md"
		if n > 1 {
			name = fmt.Sprintf("session-%s-%d.md", stamp, n)
		}
		path := filepath.Join(s.archivesDir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create archive %s: %w", path, err)
		}

		_, werr := f.WriteString(doc)
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			return "", fmt.Errorf("write archive %s: %w", path, err)
		}

		slog.Debug("archive written", "path", path, "bytes", len(doc))
		return path, nil
	}
}

// AppendRunningLog appends a compressed entry for res to messages.md,
// writing the header first if the file does not exist yet.
func (s *Store) AppendRunningLog(res extract.Result) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("create archive root: %w", err)
	}

	if _, err := os.Stat(s.runningLog); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(s.runningLog, []byte(runningLogHeader), 0o644); err != nil {
			return "", fmt.Errorf("write running log header: %w", err)
		}
	}

	f, err := os.OpenFile(s.runningLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open running log: %w", err)
	}

	_, werr := f.WriteString(RenderLogEntry(res))
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return "", fmt.Errorf("append running log: %w", err)
	}
	return s.runningLog, nil
}

// RenderLogEntry produces one dated running-log section.
func RenderLogEntry(res extract.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n## Archive: %s\n\n", res.Timestamp.Format("2006-01-02 15:04"))
	b.WriteString("### State\n")
	b.WriteString(stringutils.OrDefault(stringutils.Head(res.CurrentState, logStateLen), "Working session"))
	b.WriteString("\n\n### Key Points\n")

	for _, d := range head(res.Decisions, logMaxDecision) {
		fmt.Fprintf(&b, "- Decision: %s\n", stringutils.Head(d, logItemLen))
	}
	for _, l := range head(res.Lessons, logMaxLesson) {
		fmt.Fprintf(&b, "- Lesson: %s\n", stringutils.Head(l, logItemLen))
	}

	b.WriteString("\n---\n")
	return b.String()
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
