// Package installer provisions the Inno Setup script and launches the Inno
// Setup compiler against it.
package installer

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/innobuild/innobuild/internal/utils/file"
	"github.com/innobuild/innobuild/internal/utils/logger"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

//go:embed template/installer.iss
var defaultScript []byte

// DefaultScript returns the installer script compiled into the binary.
func DefaultScript() []byte {
	return append([]byte(nil), defaultScript...)
}

// Provisioner makes sure the installer script exists in InstallersDir.
type Provisioner struct {
	InstallersDir string
	ScriptName    string
	// TemplateDir is copied into InstallersDir when the script is missing.
	// Empty means only the built-in script is written.
	TemplateDir string
	// Progress receives the copy progress bar. Nil picks stderr when it is a terminal.
	Progress io.Writer
}

func (p *Provisioner) ScriptPath() string {
	return filepath.Join(p.InstallersDir, p.ScriptName)
}

func (p *Provisioner) ScriptExists() bool {
	return file.IsFile(p.ScriptPath())
}

// EnsureScript creates the installer script if it is missing and reports
// whether anything was created. An existing script is never touched.
func (p *Provisioner) EnsureScript() (bool, error) {
	log := logger.Logger()

	script := p.ScriptPath()
	if p.ScriptExists() {
		log.Debugf("Installer script %s already exists", script)
		return false, nil
	}

	if err := os.MkdirAll(p.InstallersDir, 0o755); err != nil {
		log.Errorf("Failed to create installers directory %s: %v", p.InstallersDir, err)
		return false, fmt.Errorf("creating installers directory: %w", err)
	}

	if p.TemplateDir != "" {
		if _, err := p.CopyTemplate(); err != nil {
			return false, err
		}
		if p.ScriptExists() {
			log.Infof("Installer script created from template %s", p.TemplateDir)
			return true, nil
		}
		log.Warnf("Template %s has no %s; writing the built-in script", p.TemplateDir, p.ScriptName)
	}

	if err := writeExclusive(script, defaultScript); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		log.Errorf("Failed to write installer script %s: %v", script, err)
		return false, fmt.Errorf("writing installer script: %w", err)
	}
	log.Infof("Installer script created at %s", script)
	return true, nil
}

// CopyTemplate copies TemplateDir into InstallersDir, skipping .meta sidecar
// files and every file that already exists at the destination.
func (p *Provisioner) CopyTemplate() (*file.CopyResult, error) {
	log := logger.Logger()

	if p.TemplateDir == "" {
		return nil, errors.New("no installer template directory configured")
	}

	opts := file.CopyOptions{
		Recursive: true,
		Exclude:   IsMetaFile,
	}

	var bar *progressbar.ProgressBar
	if w := p.progressWriter(); w != nil {
		if total, err := file.CountFiles(p.TemplateDir, opts); err == nil && total > 0 {
			bar = newCopyBar(total, w)
			opts.OnFile = func(dst string, _ error) {
				bar.Describe(filepath.Base(dst))
				if err := bar.Add(1); err != nil {
					log.Debugf("failed to add to progress bar: %v", err)
				}
			}
		}
	}

	result, err := file.CopyDirectory(p.TemplateDir, p.InstallersDir, opts)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		log.Errorf("Failed to copy installer template: %v", err)
		return result, err
	}
	log.Infof("Installer template: %d copied, %d skipped, %d excluded",
		len(result.Copied), len(result.Skipped), len(result.Excluded))
	return result, nil
}

func (p *Provisioner) progressWriter() io.Writer {
	if p.Progress != nil {
		return p.Progress
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return os.Stderr
	}
	return nil
}

func newCopyBar(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// IsMetaFile matches Unity .meta sidecar files, in any case.
func IsMetaFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".meta")
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
