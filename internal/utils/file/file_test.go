package file_test

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/innobuild/innobuild/internal/utils/file"
)

// setupTemplateTree builds:
//
//	src/installer.iss
//	src/installer.iss.meta
//	src/Resources/SetupIcon.ico
//	src/Resources/SetupIcon.ico.META
func setupTemplateTree(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "src")
	files := map[string]string{
		"installer.iss":                  "; script",
		"installer.iss.meta":             "guid: 1",
		"Resources/SetupIcon.ico":        "icon",
		"Resources/SetupIcon.ico.META":   "guid: 2",
		"Resources/Licenses/LICENSE.txt": "license",
	}
	for rel, content := range files {
		path := filepath.Join(src, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return src
}

func excludeMeta(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".meta")
}

func TestIsSubPath(t *testing.T) {
	base := t.TempDir()
	tests := []struct {
		target string
		want   bool
	}{
		{base, true},
		{filepath.Join(base, "Installers"), true},
		{filepath.Join(base, "..", "elsewhere"), false},
		{filepath.Join(base, "..foo"), true},
	}
	for _, tt := range tests {
		got, err := file.IsSubPath(base, tt.target)
		if err != nil {
			t.Fatalf("IsSubPath(%s) error: %v", tt.target, err)
		}
		if got != tt.want {
			t.Errorf("IsSubPath(%s, %s) = %v, want %v", base, tt.target, got, tt.want)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "Version.txt")

	if err := file.WriteFileAtomic(dst, []byte("1.0.0"), 0o644); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := file.WriteFileAtomic(dst, []byte("1.0.1"), 0o644); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "1.0.1" {
		t.Errorf("expected overwritten content 1.0.1, got %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, found %d entries", len(entries))
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "missing", "Version.txt")
	if err := file.WriteFileAtomic(dst, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error when parent directory is missing")
	}
}

func TestCopyFileExclusive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(src, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := file.CopyFileExclusive(src, dst); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if err := os.WriteFile(src, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := file.CopyFileExclusive(src, dst); !os.IsExist(err) {
		t.Fatalf("expected exist error on second copy, got %v", err)
	}

	data, _ := os.ReadFile(dst)
	if string(data) != "first" {
		t.Errorf("existing destination must not be overwritten, got %q", data)
	}

	if err := file.CopyFileExclusive(filepath.Join(dir, "nope"), filepath.Join(dir, "c.txt")); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestCopyDirectory(t *testing.T) {
	tests := []struct {
		name      string
		recursive bool
		want      []string
	}{
		{
			name:      "recursive excludes meta files",
			recursive: true,
			want:      []string{"Resources/Licenses/LICENSE.txt", "Resources/SetupIcon.ico", "installer.iss"},
		},
		{
			name:      "top level only",
			recursive: false,
			want:      []string{"installer.iss"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := setupTemplateTree(t)
			dst := filepath.Join(t.TempDir(), "Installers")

			var seen int
			opts := file.CopyOptions{
				Recursive: tt.recursive,
				Exclude:   excludeMeta,
				OnFile:    func(string, error) { seen++ },
			}
			result, err := file.CopyDirectory(src, dst, opts)
			if err != nil {
				t.Fatalf("CopyDirectory failed: %v", err)
			}

			var got []string
			err = filepath.WalkDir(dst, func(path string, d os.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return err
				}
				rel, _ := filepath.Rel(dst, path)
				got = append(got, filepath.ToSlash(rel))
				return nil
			})
			if err != nil {
				t.Fatalf("walk failed: %v", err)
			}
			sort.Strings(got)

			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("copied files = %v, want %v", got, tt.want)
			}
			if len(result.Copied) != len(tt.want) {
				t.Errorf("result.Copied = %v, want %d entries", result.Copied, len(tt.want))
			}
			if seen != len(tt.want) {
				t.Errorf("OnFile called %d times, want %d", seen, len(tt.want))
			}

			count, err := file.CountFiles(src, opts)
			if err != nil {
				t.Fatalf("CountFiles failed: %v", err)
			}
			if count != len(tt.want) {
				t.Errorf("CountFiles = %d, want %d", count, len(tt.want))
			}
		})
	}
}

func TestCopyDirectory_SkipsExistingFiles(t *testing.T) {
	src := setupTemplateTree(t)
	dst := filepath.Join(t.TempDir(), "Installers")
	if err := os.MkdirAll(dst, 0o755); err != nil {
		t.Fatal(err)
	}
	existing := filepath.Join(dst, "installer.iss")
	if err := os.WriteFile(existing, []byte("; customised"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := file.CopyDirectory(src, dst, file.CopyOptions{Recursive: true, Exclude: excludeMeta})
	if err != nil {
		t.Fatalf("CopyDirectory failed: %v", err)
	}

	data, _ := os.ReadFile(existing)
	if string(data) != "; customised" {
		t.Errorf("existing file was overwritten: %q", data)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != existing {
		t.Errorf("expected %s to be skipped, got %v", existing, result.Skipped)
	}
	if !file.IsFile(filepath.Join(dst, "Resources", "SetupIcon.ico")) {
		t.Error("sibling files should still be copied after a conflict")
	}
}

func TestCopyDirectory_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := file.CopyDirectory(filepath.Join(dir, "missing"), filepath.Join(dir, "out"), file.CopyOptions{}); err == nil {
		t.Error("expected error for missing source directory")
	}

	src := setupTemplateTree(t)
	if _, err := file.CopyDirectory(src, filepath.Join(src, "nested"), file.CopyOptions{Recursive: true}); err == nil {
		t.Error("expected error when copying a directory into itself")
	}
}
