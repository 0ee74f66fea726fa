package security

import (
	"fmt"
	"os"
	"path/filepath"
)

// SymlinkPolicy decides what happens when a path to be read is a symlink.
type SymlinkPolicy int

const (
	// RejectSymlinks fails on any symlink.
	RejectSymlinks SymlinkPolicy = iota
	// ResolveSymlinks follows the link and reads its target.
	ResolveSymlinks
)

// CheckSymlink returns the path that should actually be opened for path under policy.
func CheckSymlink(path string, policy SymlinkPolicy) (string, error) {
	if policy != RejectSymlinks && policy != ResolveSymlinks {
		return "", fmt.Errorf("invalid symlink policy: %d", policy)
	}

	info, err := os.Lstat(path)
	if err != nil {
		return "", fmt.Errorf("failed to get file info for %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return path, nil
	}

	if policy == RejectSymlinks {
		return "", fmt.Errorf("symlinks are not allowed: %s", path)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlink %s: %w", path, err)
	}
	return resolved, nil
}

// SafeReadFile reads path after applying the symlink policy.
func SafeReadFile(path string, policy SymlinkPolicy) ([]byte, error) {
	resolved, err := CheckSymlink(path, policy)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(resolved)
}
