// Package session reads the assistant's session logs.
//
// A session log is JSONL produced by the assistant platform; each line is
// one independent record:
//
//	{"type":"user","message":{"role":"user","content":"…"}, …}
//	{"type":"assistant","message":{"content":[{"type":"text","text":"…"}]}, …}
//
// Only "user" and "assistant" records are kept. message.content is either a
// plain string or a list of content blocks; only plain strings are text.
package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Record is one conversational entry of a session log.
type Record struct {
	Role    string
	Content any // string for plain text; []any or map[string]any for structured content
}

// Text returns the record's content when it is plain text.
func (r Record) Text() (string, bool) {
	s, ok := r.Content.(string)
	return s, ok
}

// wireRecord is the subset of a log line we decode.
type wireRecord struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

type wireMessage struct {
	Content any `json:"content"`
}

// DecodeRecords reads the user and assistant records of a log from r, in
// order. name identifies the log in errors and debug output. Malformed lines
// are skipped. If reading fails part way, the records decoded so far are
// returned together with the error.
func DecodeRecords(r io.Reader, name string) ([]Record, error) {
	var (
		records []Record
		lineNo  int
	)

	br := bufio.NewReader(r)
	for {
		line, readErr := br.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			if rec, ok := parseLine(line, name, lineNo); ok {
				records = append(records, rec)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return records, nil
			}
			return records, fmt.Errorf("read session log %s: %w", name, readErr)
		}
	}
}

// parseLine decodes one log line. It reports false for blank, malformed and
// non-conversational lines.
func parseLine(line []byte, name string, lineNo int) (Record, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Record{}, false
	}

	var w wireRecord
	if err := json.Unmarshal(line, &w); err != nil {
		slog.Debug("skipping malformed session line", "file", name, "line", lineNo, "err", err)
		return Record{}, false
	}
	if w.Type != RoleUser && w.Type != RoleAssistant {
		return Record{}, false
	}

	if len(w.Message) == 0 {
		return Record{Role: w.Type, Content: ""}, true
	}

	var m wireMessage
	if err := json.Unmarshal(w.Message, &m); err != nil {
		slog.Debug("skipping session line with malformed message", "file", name, "line", lineNo, "err", err)
		return Record{}, false
	}
	return Record{Role: w.Type, Content: m.Content}, true
}
