// Package usage estimates how much of the context window a session log uses.
//
// The estimate reads only the log's size: tokens = bytes / BytesPerToken.
// It is a threshold heuristic, not a tokenizer.
package usage

import (
	"fmt"
	"math"
	"os"

	"github.com/ctxarchive/ctxarchive/internal/config"
)

// Status is the three-tier label shown by the check command.
type Status int

const (
	StatusGood Status = iota
	StatusMonitor
	StatusArchiveNow
)

func (s Status) String() string {
	switch s {
	case StatusGood:
		return "🟢 Good"
	case StatusMonitor:
		return "🟡 Monitor"
	default:
		return "🔴 Archive Now!"
	}
}

// goodBelow is the usage percent under which the status is Good.
const goodBelow = 50.0

// Snapshot is the usage estimate for one session log at one instant.
type Snapshot struct {
	SessionFile     string
	FileSizeKB      int64
	EstimatedTokens int64
	UsagePercent    float64
	FreePercent     float64
	Threshold       float64
	TargetFree      float64 // free percent to aim for after compacting
	NeedsArchive    bool
}

// Status classifies the snapshot.
func (s Snapshot) Status() Status {
	switch {
	case s.UsagePercent < goodBelow:
		return StatusGood
	case s.UsagePercent < s.Threshold:
		return StatusMonitor
	default:
		return StatusArchiveNow
	}
}

// Estimate stats path and derives the usage snapshot. The returned Snapshot
// is only meaningful when err is nil.
func Estimate(path string, cfg config.UsageConfig) (Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("stat session log: %w", err)
	}
	return FromSize(path, info.Size(), cfg), nil
}

// FromSize computes the snapshot for a log of size bytes.
func FromSize(path string, size int64, cfg config.UsageConfig) Snapshot {
	tokens := size / cfg.BytesPerToken
	raw := float64(tokens) / float64(cfg.MaxTokens) * 100
	usagePct := round1(raw)

	return Snapshot{
		SessionFile:     path,
		FileSizeKB:      size / 1024,
		EstimatedTokens: tokens,
		UsagePercent:    usagePct,
		FreePercent:     round1(100 - raw),
		Threshold:       cfg.Threshold,
		TargetFree:      cfg.TargetFreeSpace,
		NeedsArchive:    usagePct > cfg.Threshold,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
