package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/innobuild/innobuild/internal/utils/logger"
)

// IsSubPath checks if the target path is a subpath of the base path
func IsSubPath(base, target string) (bool, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return false, err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return false, err
	}
	if rel == "." {
		return true, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return false, nil
	}
	return true, nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsFile reports whether path names an existing regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteFileAtomic replaces dst with data. The content is written to a sibling
// temp file first and renamed over dst, so readers never see a partial file.
func WriteFileAtomic(dst string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s-%s.tmp", filepath.Base(dst), uuid.New().String()[:8]))

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file for %s: %w", dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return nil
}

// CopyFileExclusive copies src to dst and fails with fs.ErrExist when dst is
// already present. dst's parent directory must exist.
func CopyFileExclusive(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("source file does not exist or cannot be read: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// CopyOptions tune CopyDirectory.
type CopyOptions struct {
	// Recursive descends into subdirectories.
	Recursive bool
	// Exclude skips files for which it returns true. Directories are never excluded.
	Exclude func(name string) bool
	// OnFile is called after each file is handled, copied or not.
	OnFile func(dst string, err error)
}

// CopyResult lists what CopyDirectory did with each file.
type CopyResult struct {
	Copied   []string
	Skipped  []string
	Excluded []string
}

// CopyDirectory copies the files in src into dst without overwriting anything.
// A file whose copy fails, typically because dst already has it, is logged and
// skipped while its siblings are still copied. A missing src is an error.
func CopyDirectory(src, dst string, opts CopyOptions) (*CopyResult, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("source directory does not exist or could not be found: %s: %w", src, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source is not a directory: %s", src)
	}
	if inside, err := IsSubPath(src, dst); err == nil && inside {
		return nil, fmt.Errorf("cannot copy %s into its own subdirectory %s", src, dst)
	}

	result := &CopyResult{}
	if err := copyDirectory(src, dst, opts, result); err != nil {
		return result, err
	}
	return result, nil
}

func copyDirectory(src, dst string, opts CopyOptions, result *CopyResult) error {
	log := logger.Logger()

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", src, err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dst, err)
	}

	var subdirs []fs.DirEntry
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, entry)
			continue
		}

		target := filepath.Join(dst, entry.Name())
		if opts.Exclude != nil && opts.Exclude(entry.Name()) {
			result.Excluded = append(result.Excluded, target)
			continue
		}

		copyErr := CopyFileExclusive(filepath.Join(src, entry.Name()), target)
		if copyErr != nil {
			if errors.Is(copyErr, fs.ErrExist) {
				log.Errorf("Failed to copy files: %s already exists", target)
			} else {
				log.Errorf("Failed to copy files: %v", copyErr)
			}
			result.Skipped = append(result.Skipped, target)
		} else {
			result.Copied = append(result.Copied, target)
		}
		if opts.OnFile != nil {
			opts.OnFile(target, copyErr)
		}
	}

	if !opts.Recursive {
		return nil
	}
	for _, sub := range subdirs {
		if err := copyDirectory(filepath.Join(src, sub.Name()), filepath.Join(dst, sub.Name()), opts, result); err != nil {
			return err
		}
	}
	return nil
}

// CountFiles returns how many files CopyDirectory would try to copy from dir.
func CountFiles(dir string, opts CopyOptions) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.Exclude == nil || !opts.Exclude(d.Name()) {
			count++
		}
		return nil
	})
	return count, err
}
