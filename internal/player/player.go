// Package player builds the Unity player from the command line.
package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/innobuild/innobuild/internal/pipeline"
	"github.com/innobuild/innobuild/internal/project"
	"github.com/innobuild/innobuild/internal/utils/logger"
	"github.com/innobuild/innobuild/internal/utils/shell"
)

var ErrUnsupportedTarget = errors.New("unsupported build target")

// Target is a build target the editor can produce from batch mode.
type Target struct {
	Name  string
	Flag  string // editor command line switch taking the output path
	Ext   string // suffix of the built player
	Group string
}

var Targets = map[string]Target{
	"StandaloneWindows64": {Name: "StandaloneWindows64", Flag: "-buildWindows64Player", Ext: ".exe", Group: project.StandaloneGroup},
	"StandaloneWindows":   {Name: "StandaloneWindows", Flag: "-buildWindowsPlayer", Ext: ".exe", Group: project.StandaloneGroup},
	"StandaloneLinux64":   {Name: "StandaloneLinux64", Flag: "-buildLinux64Player", Ext: ".x86_64", Group: project.StandaloneGroup},
	"StandaloneOSX":       {Name: "StandaloneOSX", Flag: "-buildOSXUniversalPlayer", Ext: ".app", Group: project.StandaloneGroup},
}

// DefaultTarget is used when the settings name no active target.
const DefaultTarget = "StandaloneWindows64"

// TargetNames lists the supported targets, sorted.
func TargetNames() []string {
	names := make([]string, 0, len(Targets))
	for name := range Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func LookupTarget(name string) (Target, error) {
	if name == "" {
		name = DefaultTarget
	}
	t, ok := Targets[name]
	if !ok {
		return Target{}, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedTarget, name, strings.Join(TargetNames(), ", "))
	}
	return t, nil
}

// Builder runs the Unity editor in batch mode.
type Builder struct {
	EditorPath string
	ProjectDir string
	BuildsDir  string
	Executor   shell.Executor
}

// OutputPath is where the player for target is written.
func (b *Builder) OutputPath(productName string, target Target) string {
	name := strings.TrimSpace(productName)
	if name == "" {
		name = "Player"
	}
	return filepath.Join(b.BuildsDir, name+target.Ext)
}

// Args returns the editor command line for building target to outputPath.
func (b *Builder) Args(target Target, outputPath string) []string {
	return []string{
		"-batchmode",
		"-quit",
		"-projectPath", b.ProjectDir,
		target.Flag, outputPath,
		"-logFile", "-",
	}
}

// Check reports whether a build of settings can be attempted and returns its target.
func (b *Builder) Check(settings *project.Settings) (Target, error) {
	if strings.TrimSpace(b.EditorPath) == "" {
		return Target{}, errors.New("no Unity editor configured (set unity.editor_path or UNITY_EDITOR)")
	}
	return LookupTarget(settings.Build.ActiveTarget)
}

// Build builds the active target of settings into BuildsDir. A build the
// editor reports as failed is a result, not an error; errors mean the build
// could not be attempted.
func (b *Builder) Build(ctx context.Context, settings *project.Settings) (*pipeline.BuildResult, error) {
	log := logger.Logger()

	target, err := b.Check(settings)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(b.BuildsDir, 0o755); err != nil {
		log.Errorf("Failed to create builds directory %s: %v", b.BuildsDir, err)
		return nil, fmt.Errorf("creating builds directory: %w", err)
	}

	scenes := settings.EnabledScenes()
	if len(scenes) == 0 {
		log.Warn("No enabled scenes in the build settings; the editor builds its default scene")
	}
	log.Debugf("Scenes: %s", strings.Join(scenes, ", "))

	output := b.OutputPath(settings.Player.ProductName, target)
	result := &pipeline.BuildResult{
		OutputPath:    output,
		PlatformGroup: target.Group,
		Target:        target.Name,
	}

	runner := b.Executor
	if runner == nil {
		runner = shell.Default
	}

	log.Infof("Building %s player to %s", target.Name, output)
	_, err = runner.Run(ctx, b.EditorPath, b.Args(target, output)...)
	switch {
	case err == nil:
		result.Result = pipeline.Succeeded
	case ctx.Err() != nil:
		result.Result = pipeline.Cancelled
		log.Warnf("Player build cancelled: %v", ctx.Err())
	default:
		result.Result = pipeline.Failed
		log.Errorf("Player build failed (exit code %d): %v", shell.ExitCode(err), err)
	}
	return result, nil
}
