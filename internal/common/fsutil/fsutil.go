package fsutil

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// FirstExisting returns the first candidate path that exists, or "".
func FirstExisting(candidates ...string) string {
	for _, c := range candidates {
		p, err := ExpandHome(c)
		if err != nil || p == "" {
			continue
		}
		if PathExists(p) {
			return p
		}
	}
	return ""
}

// ResolveCommand expands '~' and locates cmd. Bare names are looked up on
// PATH; anything containing a separator must exist as given.
func ResolveCommand(cmd string) (string, error) {
	p, err := ExpandHome(strings.TrimSpace(cmd))
	if err != nil {
		return "", err
	}
	if p == "" {
		return "", errors.New("empty command")
	}
	if strings.ContainsRune(p, os.PathSeparator) {
		if !PathExists(p) {
			return "", fmt.Errorf("command not found: %s", p)
		}
		return p, nil
	}
	resolved, err := exec.LookPath(p)
	if err != nil {
		return "", fmt.Errorf("command not found on PATH: %s: %w", p, err)
	}
	return resolved, nil
}
