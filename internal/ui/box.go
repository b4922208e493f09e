// Package ui renders the fixed-width terminal panels printed by the CLI.
package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ctxarchive/ctxarchive/internal/usage"
)

// Width is the outer width of every panel, borders included.
const Width = 60

const barCells = 20

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Width(Width-2).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Width(Width - 6).
			Align(lipgloss.Center)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	statusStyles = map[usage.Status]lipgloss.Style{
		usage.StatusGood:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		usage.StatusMonitor:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		usage.StatusArchiveNow: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}

	printer = message.NewPrinter(language.English)
)

// Bar draws a 20-cell usage bar, one filled cell per 5%.
func Bar(percent float64) string {
	filled := int(math.Floor(percent / 5))
	filled = max(0, min(barCells, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled)
}

// UsagePanel renders the check command's report.
func UsagePanel(s usage.Snapshot) string {
	status := s.Status()
	lines := []string{
		titleStyle.Render("Context Usage Check"),
		"",
		fmt.Sprintf("[%s] %.1f%%", Bar(s.UsagePercent), s.UsagePercent),
		"",
		"Estimated tokens: " + printer.Sprintf("%d", s.EstimatedTokens),
		fmt.Sprintf("Free space: %.1f%% (target: %g%%)", s.FreePercent, s.TargetFree),
		fmt.Sprintf("Threshold: %g%%", s.Threshold),
		dimStyle.Render(fmt.Sprintf("Session: %s (%d KB)", shorten(s.SessionFile, Width-24), s.FileSizeKB)),
		"",
		"Status: " + statusStyles[status].Render(status.String()),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// ArchivePanel renders the summary printed after a successful archive.
func ArchivePanel(project, archivePath, runningLogPath string) string {
	lines := []string{
		titleStyle.Render("✓ Archive Complete"),
		"",
		"Saved to:",
		"• MCP Memory: session:" + project + ":*",
		"• " + shorten(archivePath, Width-10),
		"• " + shorten(runningLogPath, Width-10),
		"",
		"Next: Run /compact in Claude to free context space",
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// shorten keeps the tail of long paths so the panel stays fixed width.
func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}
