package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/innobuild/innobuild/internal/config"
	"github.com/innobuild/innobuild/internal/pipeline"
	"github.com/innobuild/innobuild/internal/player"
	"github.com/innobuild/innobuild/internal/project"
	"github.com/innobuild/innobuild/internal/utils/logger"
	"github.com/innobuild/innobuild/internal/utils/spinner"
	"github.com/spf13/cobra"
)

// Build command flags
var (
	skipHooks     bool   = false
	buildTarget   string = "" // Empty means the active target from the settings
	outputPath    string = ""
	platformGroup string = project.StandaloneGroup
	buildResult   string = pipeline.Succeeded.String()
)

// createQuickBuildCommand creates the quick-build subcommand
func createQuickBuildCommand() *cobra.Command {
	quickBuildCmd := &cobra.Command{
		Use:   "quick-build",
		Short: "Build the player for the active target",
		Long: `Build the player for the active build target with the enabled scenes.
The Unity editor runs in batch mode and writes the player into the builds
directory. The bundle version is bumped before the build, and after a
successful build the metadata files are exported and the installer step runs.`,
		Args: cobra.NoArgs,
		RunE: executeQuickBuild,
	}

	quickBuildCmd.Flags().BoolVar(&skipHooks, "skip-hooks", false,
		"Only build the player; skip the version bump and the post-build steps")
	quickBuildCmd.Flags().StringVar(&buildTarget, "target", "",
		fmt.Sprintf("Build target (%s)", strings.Join(player.TargetNames(), ", ")))

	return quickBuildCmd
}

// createPreBuildCommand creates the pre-build subcommand
func createPreBuildCommand() *cobra.Command {
	preBuildCmd := &cobra.Command{
		Use:   "pre-build",
		Short: "Run the pre-build step (bump the bundle version)",
		Long: `Run the pre-build step for a build started elsewhere, e.g. from an editor
script or CI. The bundle version's patch number is incremented and the new
version is printed.`,
		Args: cobra.NoArgs,
		RunE: executePreBuild,
	}

	preBuildCmd.Flags().StringVar(&buildTarget, "target", "", "Build target, recorded for the log")

	return preBuildCmd
}

// createPostBuildCommand creates the post-build subcommand
func createPostBuildCommand() *cobra.Command {
	postBuildCmd := &cobra.Command{
		Use:   "post-build --output PATH",
		Short: "Run the post-build step (export metadata, create installer)",
		Long: `Run the post-build step for a build started elsewhere. For a successful
build the metadata files are written next to the build output; for a
standalone build the user is then asked whether to create the installer.`,
		Args: cobra.NoArgs,
		RunE: executePostBuild,
	}

	postBuildCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Path of the built player")
	postBuildCmd.Flags().StringVar(&platformGroup, "platform-group", project.StandaloneGroup,
		"Platform group of the build target")
	postBuildCmd.Flags().StringVar(&buildResult, "result", pipeline.Succeeded.String(),
		"Build result (Succeeded, Failed, Cancelled, Unknown)")
	postBuildCmd.Flags().StringVar(&buildTarget, "target", "", "Build target, recorded in the history")
	_ = postBuildCmd.MarkFlagRequired("output")

	return postBuildCmd
}

func executePreBuild(cmd *cobra.Command, args []string) error {
	hooks, closeHistory, err := newHooks()
	if err != nil {
		return err
	}
	defer closeHistory()

	bc, err := hooks.BeforeBuild(cmd.Context(), &pipeline.BuildContext{Target: buildTarget})
	if err != nil {
		return fmt.Errorf("pre-build failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), bc.Version)
	return nil
}

func executePostBuild(cmd *cobra.Command, args []string) error {
	result, err := pipeline.ParseResult(buildResult)
	if err != nil {
		return err
	}

	hooks, closeHistory, err := newHooks()
	if err != nil {
		return err
	}
	defer closeHistory()

	if err := hooks.AfterBuild(cmd.Context(), &pipeline.BuildResult{
		Result:        result,
		OutputPath:    outputPath,
		PlatformGroup: platformGroup,
		Target:        buildTarget,
	}); err != nil {
		return fmt.Errorf("post-build failed: %w", err)
	}
	return nil
}

// executeQuickBuild handles the quick-build command execution logic
func executeQuickBuild(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hooks, closeHistory, err := newHooks()
	if err != nil {
		return err
	}
	defer closeHistory()

	projectRoot, err := config.ProjectDir()
	if err != nil {
		return err
	}
	builder := &player.Builder{
		EditorPath: config.Global().Unity.EditorPath,
		ProjectDir: projectRoot,
		BuildsDir:  hooks.BuildsDir,
	}
	if err := os.MkdirAll(builder.BuildsDir, 0o755); err != nil {
		log.Errorf("Failed to create builds directory: %v", err)
		return fmt.Errorf("creating builds directory: %w", err)
	}

	settings, err := hooks.Settings.Load()
	if err != nil {
		return err
	}
	if buildTarget != "" {
		settings.Build.ActiveTarget = buildTarget
	}
	if _, err := builder.Check(settings); err != nil {
		return err
	}

	var bc *pipeline.BuildContext
	if !skipHooks {
		bc, err = hooks.BeforeBuild(ctx, &pipeline.BuildContext{Target: settings.Build.ActiveTarget})
		if err != nil {
			return fmt.Errorf("pre-build failed: %w", err)
		}
		settings.Player.BundleVersion = bc.Version
	}

	result, err := buildPlayer(ctx, builder, settings)
	if err != nil {
		return err
	}
	result.Build = bc

	if !skipHooks {
		if err := hooks.AfterBuild(ctx, result); err != nil {
			return fmt.Errorf("post-build failed: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Build %s: %s\n", result.Result, result.OutputPath)
	if result.Result != pipeline.Succeeded {
		return fmt.Errorf("player build %s", strings.ToLower(result.Result.String()))
	}
	return nil
}

func buildPlayer(ctx context.Context, b *player.Builder, settings *project.Settings) (*pipeline.BuildResult, error) {
	spinner.StartSpinner("Building player...")
	defer spinner.StopSpinner()
	return b.Build(ctx, settings)
}
