// Package archive writes extracted session content to the local Markdown
// archive: one dated file per archive run plus the cumulative running log.
package archive

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ctxarchive/ctxarchive/internal/extract"
	"github.com/ctxarchive/ctxarchive/internal/shared/stringutils"
)

// Snippet limits, in characters.
const (
	archiveItemLen = 150
	archiveTaskLen = 100
	maxArchiveTask = 10
)

const (
	noState     = "No state captured"
	noDecisions = "- No decisions captured"
	noLessons   = "- No lessons captured"
	noTasks     = "- No tasks captured"
	footer      = "*Auto-archived by ctxarchive*"
)

// fileStampLayout names archive files and memory entities (minute granularity).
const fileStampLayout = "20060102-1504"

// frontMatter is the YAML header of an archive file, for tools that index
// the archive directory.
type frontMatter struct {
	Project    string `yaml:"project"`
	Archived   string `yaml:"archived"`
	Run        string `yaml:"run,omitempty"`
	Decisions  int    `yaml:"decisions"`
	Lessons    int    `yaml:"lessons"`
	Tasks      int    `yaml:"tasks"`
	Extraction string `yaml:"extraction"`
}

// Render produces the archive document for res. Decisions and lessons are
// all listed; tasks are capped at the first ten.
func Render(res extract.Result, project, runID string) (string, error) {
	fm, err := yaml.Marshal(frontMatter{
		Project:    project,
		Archived:   res.ISOTimestamp(),
		Run:        runID,
		Decisions:  len(res.Decisions),
		Lessons:    len(res.Lessons),
		Tasks:      len(res.TasksCompleted),
		Extraction: res.Outcome.String(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(bytes.TrimRight(fm, "\n"))
	b.WriteString("\n---\n\n")

	fmt.Fprintf(&b, "# Session Archive: %s\n\n", res.Timestamp.Format(fileStampLayout))
	fmt.Fprintf(&b, "**Project:** %s\n", project)
	fmt.Fprintf(&b, "**Archived:** %s\n\n", res.ISOTimestamp())

	b.WriteString("## Current State\n")
	b.WriteString(stringutils.OrDefault(res.CurrentState, noState))
	b.WriteString("\n\n")

	b.WriteString("## Decisions Made\n")
	writeEllipsized(&b, res.Decisions, noDecisions)

	b.WriteString("\n## Lessons Learned\n")
	writeEllipsized(&b, res.Lessons, noLessons)

	b.WriteString("\n## Tasks Completed\n")
	tasks := res.TasksCompleted
	if len(tasks) > maxArchiveTask {
		tasks = tasks[:maxArchiveTask]
	}
	for _, task := range tasks {
		fmt.Fprintf(&b, "- %s\n", stringutils.Head(task, archiveTaskLen))
	}
	if len(tasks) == 0 {
		b.WriteString(noTasks + "\n")
	}

	b.WriteString("\n---\n" + footer + "\n")
	return b.String(), nil
}

// writeEllipsized lists items cut to archiveItemLen, each marked with "...".
func writeEllipsized(b *strings.Builder, items []string, placeholder string) {
	if len(items) == 0 {
		b.WriteString(placeholder + "\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s...\n", stringutils.Head(item, archiveItemLen))
	}
}
