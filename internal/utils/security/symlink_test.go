package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckSymlink_RegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regular.txt")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	for _, policy := range []SymlinkPolicy{RejectSymlinks, ResolveSymlinks} {
		resolved, err := CheckSymlink(path, policy)
		if err != nil {
			t.Errorf("CheckSymlink failed for regular file with policy %d: %v", policy, err)
			continue
		}
		if resolved != path {
			t.Errorf("expected %s, got %s", path, resolved)
		}
	}
}

func TestCheckSymlink_Symlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	if err := os.WriteFile(target, []byte("target content"), 0o644); err != nil {
		t.Fatalf("failed to write target: %v", err)
	}
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := CheckSymlink(link, RejectSymlinks)
	if err == nil || !strings.Contains(err.Error(), "symlinks are not allowed") {
		t.Errorf("expected 'symlinks are not allowed' error, got: %v", err)
	}

	data, err := SafeReadFile(link, ResolveSymlinks)
	if err != nil {
		t.Fatalf("SafeReadFile with ResolveSymlinks failed: %v", err)
	}
	if string(data) != "target content" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestCheckSymlink_InvalidPolicyAndMissingFile(t *testing.T) {
	if _, err := CheckSymlink("whatever", SymlinkPolicy(42)); err == nil {
		t.Error("expected invalid policy error")
	}
	if _, err := SafeReadFile(filepath.Join(t.TempDir(), "missing"), RejectSymlinks); err == nil {
		t.Error("expected error for missing file")
	}
}
