package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	return home
}

func TestExpandHome(t *testing.T) {
	home := setHome(t)
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if p, err := ExpandHome("~"); err != nil || p != home {
		t.Fatalf("expected %q, got %q (err=%v)", home, p, err)
	}
	exp, err := ExpandHome("~/hosts")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if filepath.Base(exp) != "hosts" || filepath.Dir(exp) != home {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
}

func TestFirstExisting(t *testing.T) {
	home := setHome(t)
	p := filepath.Join(home, "eventdriver.yaml")
	if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := FirstExisting("", "/definitely/missing.yaml", "~/eventdriver.yaml"); got != p {
		t.Fatalf("got %q want %q", got, p)
	}
	if got := FirstExisting("/definitely/missing.yaml"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestResolveCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("path semantics differ on windows")
	}
	home := setHome(t)
	bin := filepath.Join(home, "host.sh")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, err := ResolveCommand("~/host.sh"); err != nil || got != bin {
		t.Fatalf("got %q err=%v", got, err)
	}
	if _, err := ResolveCommand("~/missing.sh"); err == nil {
		t.Fatalf("expected error for missing path")
	}
	if _, err := ResolveCommand("  "); err == nil {
		t.Fatalf("expected error for empty command")
	}
	if _, err := ResolveCommand("sh"); err != nil {
		t.Fatalf("sh should be on PATH: %v", err)
	}
	if _, err := ResolveCommand("definitely-not-a-real-binary-12345"); err == nil {
		t.Fatalf("expected PATH lookup failure")
	}
}
