// Package app implements the check, archive, auto and summary flows.
//
// Every flow reports to the operator through the Service's writer. Missing
// sessions, extraction problems and memory-service failures are printed and
// swallowed; only a failed write to the local archive is returned as an error.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ctxarchive/ctxarchive/internal/config"
	"github.com/ctxarchive/ctxarchive/internal/extract"
	"github.com/ctxarchive/ctxarchive/internal/shared/stringutils"
	"github.com/ctxarchive/ctxarchive/internal/ui"
	"github.com/ctxarchive/ctxarchive/internal/usage"
)

// SessionFinder locates the active session log for a working directory.
type SessionFinder interface {
	Find(cwd string) (string, error)
}

// ArchiveWriter persists extracted content locally.
type ArchiveWriter interface {
	WriteArchive(res extract.Result, project, runID string) (string, error)
	AppendRunningLog(res extract.Result) (string, error)
}

// MemorySaver forwards extracted content to the external memory service.
type MemorySaver interface {
	Save(ctx context.Context, res extract.Result, project string) error
}

// Service runs the CLI flows against one working directory.
type Service struct {
	cfg     config.Config
	finder  SessionFinder
	archive ArchiveWriter
	memory  MemorySaver
	out     io.Writer
	now     func() time.Time
	runID   string
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRunID tags archives written by this Service.
func WithRunID(id string) Option {
	return func(s *Service) { s.runID = id }
}

// NewService creates a Service.
func NewService(cfg config.Config, finder SessionFinder, archive ArchiveWriter, memory MemorySaver, out io.Writer, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		finder:  finder,
		archive: archive,
		memory:  memory,
		out:     out,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check prints the usage panel for the active session.
func (s *Service) Check() {
	snap, ok := s.estimate()
	if !ok {
		return
	}

	fmt.Fprintln(s.out, ui.UsagePanel(snap))
	if snap.NeedsArchive {
		fmt.Fprintln(s.out, "💡 Run: ctxarchive archive")
	}
}

// Auto archives the active session only when usage exceeds the threshold.
func (s *Service) Auto(ctx context.Context) error {
	snap, ok := s.estimate()
	if !ok {
		return nil
	}

	if !snap.NeedsArchive {
		s.printf("✓ Context at %.1f%% - no archive needed\n", snap.UsagePercent)
		return nil
	}

	s.printf("⚠️  Context at %.1f%% (threshold: %g%%)\n", snap.UsagePercent, snap.Threshold)
	s.printf("   Auto-archiving...\n\n")
	return s.Archive(ctx, false)
}

// Summary previews what Archive would save without writing anything.
func (s *Service) Summary(ctx context.Context) error {
	return s.Archive(ctx, true)
}

// Archive extracts the active session and, unless dry, saves it to the
// memory service, a dated archive file and the running log, in that order.
// A dry run touches neither the filesystem nor the memory service.
func (s *Service) Archive(ctx context.Context, dry bool) error {
	s.printf("📦 Archiving session...\n\n")

	project := s.cfg.ProjectName()
	sessionFile, err := s.finder.Find(s.cfg.WorkingDir)
	if err != nil {
		s.printf("❌ %s\n", upperFirst(err.Error()))
		return nil
	}

	s.printf("   Project: %s\n", project)
	s.printf("   Session: %s\n", filepath.Base(sessionFile))

	s.printf("\n📝 Extracting key content...\n")
	res := extract.Extract(sessionFile, s.cfg.Extract.MaxMessages, s.now())
	if res.Outcome != extract.Complete {
		s.printf("   ⚠ Extraction %s: %v\n", res.Outcome, res.Err)
	}

	if dry {
		s.printDryRun(res)
		return nil
	}

	slog.Debug("archiving", "project", project, "session", sessionFile, "run", s.runID,
		"decisions", len(res.Decisions), "lessons", len(res.Lessons), "tasks", len(res.TasksCompleted))

	s.printf("\n💾 Saving to MCP Memory...\n")
	if err := s.memory.Save(ctx, res, project); err != nil {
		s.printf("   ⚠ MCP save failed (server may not be running)\n")
	} else {
		s.printf("   ✓ Saved to MCP\n")
	}

	s.printf("\n📁 Saving to local files...\n")
	archivePath, archiveErr := s.archive.WriteArchive(res, project, s.runID)
	if archiveErr == nil {
		s.printf("   ✓ Archive: %s\n", archivePath)
	} else {
		s.printf("   ✗ Archive: %v\n", archiveErr)
	}

	logPath, logErr := s.archive.AppendRunningLog(res)
	if logErr == nil {
		s.printf("   ✓ Messages: %s\n", logPath)
	} else {
		s.printf("   ✗ Messages: %v\n", logErr)
	}

	if err := errors.Join(archiveErr, logErr); err != nil {
		return err
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, ui.ArchivePanel(project, archivePath, logPath))
	return nil
}

func (s *Service) printDryRun(res extract.Result) {
	s.printf("\n📋 Summary (dry run - not saving):\n")
	s.printf("   Decisions: %d\n", len(res.Decisions))
	s.printf("   Lessons: %d\n", len(res.Lessons))
	s.printf("   Tasks: %d\n", len(res.TasksCompleted))
	s.printf("\n   Current state preview:\n")
	s.printf("   %s...\n", stringutils.Head(res.CurrentState, 200))
}

// estimate locates the session and computes its usage, printing any error.
func (s *Service) estimate() (usage.Snapshot, bool) {
	path, err := s.finder.Find(s.cfg.WorkingDir)
	if err != nil {
		s.printf("❌ Error: %s\n", upperFirst(err.Error()))
		return usage.Snapshot{}, false
	}

	snap, err := usage.Estimate(path, s.cfg.Usage)
	if err != nil {
		s.printf("❌ Error: %v\n", err)
		return usage.Snapshot{}, false
	}
	return snap, true
}

func (s *Service) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func upperFirst(msg string) string {
	if msg == "" || msg[0] < 'a' || msg[0] > 'z' {
		return msg
	}
	return string(msg[0]-32) + msg[1:]
}
