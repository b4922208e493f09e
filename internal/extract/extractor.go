// Package extract pulls decisions, lessons and completed tasks out of the
// tail of a session log.
//
// Classification is plain keyword matching on lower-cased text with no word
// boundaries ("done" also matches "condone"). A message may land in several
// categories.
package extract

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ctxarchive/ctxarchive/internal/session"
	"github.com/ctxarchive/ctxarchive/internal/shared/stringutils"
)

// Outcome reports how far extraction got.
type Outcome int

const (
	// Complete means every record was read and classified.
	Complete Outcome = iota
	// Partial means reading stopped early; the result holds what was gathered.
	Partial
	// Failed means the log could not be opened.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Complete:
		return "complete"
	case Partial:
		return "partial"
	default:
		return "failed"
	}
}

// Snippet limits, in characters.
const (
	decisionLen     = 200
	lessonLen       = 200
	taskLen         = 100
	currentStateLen = 500
	// an assistant message must be longer than this to become the current state
	minStateLen = 50
)

var (
	decisionKeywords = []string{"decided", "chose", "decision:"}
	lessonKeywords   = []string{"learned", "lesson:", "realized"}
	taskKeywords     = []string{"completed", "done", "finished"}
)

// Result is the content extracted from one session log.
type Result struct {
	Decisions      []string
	Lessons        []string
	TasksCompleted []string
	CurrentState   string
	Timestamp      time.Time

	Outcome Outcome
	Err     error
}

// Extract reads the log at path and classifies its last maxMessages user and
// assistant records. maxMessages <= 0 scans every record. Extraction never
// fails outright: a log that cannot be opened yields Failed, a read error
// after opening yields Partial, and whatever was classified before the error
// is kept.
func Extract(path string, maxMessages int, now time.Time) Result {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("session log unreadable", "path", path, "err", err)
		return Result{Timestamp: now, Outcome: Failed, Err: fmt.Errorf("open session log: %w", err)}
	}
	defer f.Close()

	return extractFrom(f, path, maxMessages, now)
}

func extractFrom(r io.Reader, name string, maxMessages int, now time.Time) Result {
	res := Result{Timestamp: now}

	records, err := session.DecodeRecords(r, name)
	if err != nil {
		res.Outcome = Partial
		res.Err = err
		slog.Warn("session log read incomplete", "path", name, "records", len(records), "err", err)
	}

	res.classify(tail(records, maxMessages))
	return res
}

func (r *Result) classify(records []session.Record) {
	for _, rec := range records {
		text, ok := rec.Text()
		if !ok {
			continue
		}
		lower := strings.ToLower(text)

		if containsAny(lower, decisionKeywords) {
			r.Decisions = append(r.Decisions, stringutils.Head(text, decisionLen))
		}
		if containsAny(lower, lessonKeywords) {
			r.Lessons = append(r.Lessons, stringutils.Head(text, lessonLen))
		}
		if containsAny(lower, taskKeywords) {
			r.TasksCompleted = append(r.TasksCompleted, stringutils.Head(text, taskLen))
		}
	}

	r.CurrentState = currentState(records)
}

// currentState returns the newest substantive assistant text.
func currentState(records []session.Record) string {
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.Role != session.RoleAssistant {
			continue
		}
		text, ok := rec.Text()
		if ok && stringutils.RuneLen(text) > minStateLen {
			return stringutils.Head(text, currentStateLen)
		}
	}
	return ""
}

func tail(records []session.Record, n int) []session.Record {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// ISOTimestamp formats the extraction time the way archives record it.
func (r Result) ISOTimestamp() string {
	return r.Timestamp.Format("2006-01-02T15:04:05.000000")
}
