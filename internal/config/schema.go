// Package config defines the fixed settings of ctxarchive.
//
// Nothing here is read from disk or flags: DefaultConfig is built once at
// process start and handed to each component by value.
package config

import (
	"path/filepath"
	"time"
)

// UsageConfig holds the context-window estimate constants.
type UsageConfig struct {
	Threshold       float64 // archive when usage exceeds this percent
	TargetFreeSpace float64 // free percent to aim for after /compact, shown by check
	MaxTokens       int64
	BytesPerToken   int64
}

func defaultUsageConfig() UsageConfig {
	return UsageConfig{
		Threshold:       60,
		TargetFreeSpace: 30,
		MaxTokens:       200000,
		BytesPerToken:   4,
	}
}

// ExtractConfig bounds the transcript scan.
type ExtractConfig struct {
	MaxMessages int
}

func defaultExtractConfig() ExtractConfig {
	return ExtractConfig{MaxMessages: 50}
}

// ArchiveConfig locates the local archive.
type ArchiveConfig struct {
	Dir            string // archive root, relative to the working directory unless absolute
	ArchivesSubdir string
	RunningLogName string
}

func defaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		Dir:            ".claude",
		ArchivesSubdir: "archives",
		RunningLogName: "messages.md",
	}
}

// MemoryConfig describes the external memory command.
type MemoryConfig struct {
	Command string
	Args    []string
	Timeout time.Duration
}

func defaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Command: "mcp-cli",
		Args:    []string{"call", "memory/create_entities"},
		Timeout: 30 * time.Second,
	}
}

// Config is the root settings value.
type Config struct {
	WorkingDir  string
	ProjectsDir string // assistant session logs, one subdirectory per project

	Usage   UsageConfig
	Extract ExtractConfig
	Archive ArchiveConfig
	Memory  MemoryConfig
}

// DefaultConfig returns a Config for the given working directory.
// An empty workingDir resolves to the process working directory.
func DefaultConfig(workingDir string) Config {
	return Config{
		WorkingDir:  resolveWorkingDir(workingDir),
		ProjectsDir: ProjectsDir(),
		Usage:       defaultUsageConfig(),
		Extract:     defaultExtractConfig(),
		Archive:     defaultArchiveConfig(),
		Memory:      defaultMemoryConfig(),
	}
}

// ProjectName is the base name of the working directory.
func (c Config) ProjectName() string {
	return filepath.Base(c.WorkingDir)
}

// ArchiveRoot returns the absolute archive root directory.
func (c Config) ArchiveRoot() string {
	if filepath.IsAbs(c.Archive.Dir) {
		return c.Archive.Dir
	}
	return filepath.Join(c.WorkingDir, c.Archive.Dir)
}

// ArchivesPath returns the directory holding dated archive files.
func (c Config) ArchivesPath() string {
	return filepath.Join(c.ArchiveRoot(), c.Archive.ArchivesSubdir)
}

// RunningLogPath returns the path of the cumulative running log.
func (c Config) RunningLogPath() string {
	return filepath.Join(c.ArchiveRoot(), c.Archive.RunningLogName)
}
