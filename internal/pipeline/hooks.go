// Package pipeline runs the work done around a player build: the version bump
// before it and the metadata export and installer step after it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/innobuild/innobuild/internal/bundleversion"
	"github.com/innobuild/innobuild/internal/history"
	"github.com/innobuild/innobuild/internal/installer"
	"github.com/innobuild/innobuild/internal/metadata"
	"github.com/innobuild/innobuild/internal/project"
	"github.com/innobuild/innobuild/internal/utils/logger"
)

// Result is the outcome of a player build.
type Result int

const (
	Unknown Result = iota
	Succeeded
	Failed
	Cancelled
)

var resultNames = map[Result]string{
	Unknown:   "Unknown",
	Succeeded: "Succeeded",
	Failed:    "Failed",
	Cancelled: "Cancelled",
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// ParseResult accepts the result names in any case.
func ParseResult(s string) (Result, error) {
	for r, name := range resultNames {
		if strings.EqualFold(s, name) {
			return r, nil
		}
	}
	return Unknown, fmt.Errorf("unknown build result %q (expected Succeeded, Failed, Cancelled or Unknown)", s)
}

// Dialog shown after a successful standalone build.
const (
	CreateInstallerTitle   = "Create Installer"
	CreateInstallerMessage = "Would you like to create an installer?"
)

// BuildContext is produced by BeforeBuild and carried to AfterBuild.
type BuildContext struct {
	ID        string
	Version   string
	Target    string
	StartedAt time.Time
}

// BuildResult is the summary AfterBuild acts on.
type BuildResult struct {
	Result        Result
	OutputPath    string
	PlatformGroup string
	Target        string
	// Build is the context from BeforeBuild, if the same process ran it.
	Build *BuildContext
}

// Recorder stores finished builds.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Hooks implements the two build phases.
type Hooks struct {
	Settings project.Store
	// Compiler runs after a confirmed standalone build. Nil disables the installer step.
	Compiler *installer.Compiler
	Confirm  Confirmer
	History  Recorder
	// BuildsDir is where setup-installer exported the metadata.
	BuildsDir string
	// RequireSetup skips AfterBuild until BuildsDir holds the metadata files.
	RequireSetup bool
	// VersionInfo also writes versioninfo.json next to the metadata.
	VersionInfo bool
}

// CallbackOrder is the position of these hooks among other build callbacks.
func (h *Hooks) CallbackOrder() int {
	return 0
}

// BeforeBuild bumps the bundle version. A version that cannot be parsed is
// left as it is and the build goes ahead.
func (h *Hooks) BeforeBuild(ctx context.Context, bc *BuildContext) (*BuildContext, error) {
	log := logger.Logger()

	if bc == nil {
		bc = &BuildContext{}
	}
	if bc.ID == "" {
		bc.ID = uuid.NewString()
	}
	if bc.StartedAt.IsZero() {
		bc.StartedAt = time.Now()
	}

	next, ok, err := bundleversion.Increment(h.Settings)
	if err != nil {
		return bc, err
	}
	if ok {
		bc.Version = next.String()
	} else if current, err := h.Settings.BundleVersion(); err == nil {
		bc.Version = current
	}

	log.Debugf("Pre-build %s: version %q target %q", bc.ID, bc.Version, bc.Target)
	return bc, nil
}

// AfterBuild exports the build metadata next to the build output and, for a
// standalone build the user confirms, starts the installer compiler once.
// Nothing happens for a build that did not succeed.
func (h *Hooks) AfterBuild(ctx context.Context, r *BuildResult) (err error) {
	log := logger.Logger()

	if r == nil {
		return errors.New("after build: no build result")
	}

	entry := history.Entry{
		Result:        r.Result.String(),
		OutputPath:    r.OutputPath,
		PlatformGroup: r.PlatformGroup,
		Target:        r.Target,
	}
	if r.Build != nil {
		entry.ID = r.Build.ID
		entry.Version = r.Build.Version
		entry.StartedAt = r.Build.StartedAt
		if entry.Target == "" {
			entry.Target = r.Build.Target
		}
	}
	defer func() {
		if err != nil {
			entry.Error = err.Error()
		}
		h.record(ctx, entry)
	}()

	if r.Result != Succeeded {
		log.Infof("Build result is %s; skipping post-build steps", r.Result)
		return nil
	}

	if h.RequireSetup && !metadata.IsSetup(h.BuildsDir) {
		log.Infof("Installer creation is not set up in %s (run setup-installer); skipping post-build steps", h.BuildsDir)
		return nil
	}

	settings, err := h.Settings.Load()
	if err != nil {
		return err
	}
	rec := metadata.FromSettings(settings)
	if entry.Version == "" {
		entry.Version = rec.Version
	}

	dir, err := metadata.Export(r.OutputPath, rec)
	if err != nil {
		return err
	}
	if h.VersionInfo {
		if _, err := metadata.WriteVersionInfo(dir, rec); err != nil {
			return err
		}
	}

	if r.PlatformGroup != project.StandaloneGroup || h.Compiler == nil {
		return nil
	}
	if !h.confirm(CreateInstallerTitle, CreateInstallerMessage) {
		log.Info("Installer creation declined")
		return nil
	}

	launch, err := h.Compiler.Compile(ctx)
	if err != nil {
		return err
	}
	entry.Installer = launch != nil
	return nil
}

func (h *Hooks) confirm(title, message string) bool {
	if h.Confirm == nil {
		return false
	}
	return h.Confirm.Confirm(title, message)
}

func (h *Hooks) record(ctx context.Context, e history.Entry) {
	if h.History == nil {
		return
	}
	if err := h.History.Record(ctx, e); err != nil {
		logger.Logger().Warnf("Failed to record build history: %v", err)
	}
}
