package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("failed to create other dir: %v", err)
	}

	target := filepath.Join(otherDir, "m.move")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(target)
	if got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	target := filepath.Join(baseDir, "sources", "m.move")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := "sources/m.move"
	if got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestFormatPath(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "sources", "m.move")

	if got := FormatPath(target, "basename", ""); got != "m.move" {
		t.Errorf("basename: got %q", got)
	}
	if got := FormatPath(target, "relative", tmp); got != "sources/m.move" {
		t.Errorf("relative: got %q", got)
	}
	if got := FormatPath("sources/m.move", "auto", ""); got != "sources/m.move" {
		t.Errorf("auto: got %q", got)
	}
	abs, err := AbsolutePath(target)
	if err != nil {
		t.Fatalf("AbsolutePath: %v", err)
	}
	if got := FormatPath(target, "absolute", ""); got != abs {
		t.Errorf("absolute: got %q, want %q", got, abs)
	}
}
