package config

import (
	"os"
	"path/filepath"
)

// ProjectsDir returns the assistant's session-log root: ~/.claude/projects.
func ProjectsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claude", "projects")
	}
	return filepath.Join(home, ".claude", "projects")
}

func resolveWorkingDir(dir string) string {
	if dir != "" {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
