package main

import (
	"fmt"

	"github.com/innobuild/innobuild/internal/config"
	"github.com/innobuild/innobuild/internal/metadata"
	"github.com/innobuild/innobuild/internal/project"
	"github.com/spf13/cobra"
)

var waitForCompiler bool = false

// createSetupInstallerCommand creates the setup-installer subcommand
func createSetupInstallerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup-installer",
		Short: "Prepare the project for installer creation",
		Long: `Export the build metadata into the builds directory and provision the
installers directory: the configured installer template is copied (without
Unity .meta files and without overwriting anything) and the installer script
is created if it is still missing.`,
		Args: cobra.NoArgs,
		RunE: executeSetupInstaller,
	}
}

// createExportInfoCommand creates the export-info subcommand
func createExportInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export-info [DIR]",
		Short: "Write the build metadata files",
		Long: `Write Version.txt, CompanyName.txt, ProductName.txt and ApplicationID.txt
from the project settings into DIR (default: the installers directory).`,
		Args: cobra.MaximumNArgs(1),
		RunE: executeExportInfo,
	}
}

// createCompileInstallerCommand creates the compile-installer subcommand
func createCompileInstallerCommand() *cobra.Command {
	compileCmd := &cobra.Command{
		Use:   "compile-installer",
		Short: "Start the Inno Setup compiler on the installer script",
		Long: `Locate the Inno Setup compiler (configuration, INNOBUILD_COMPILER, then the
Windows registry) and start it on the installer script. The compiler is left
running unless --wait is given.`,
		Args: cobra.NoArgs,
		RunE: executeCompileInstaller,
	}

	compileCmd.Flags().BoolVar(&waitForCompiler, "wait", false,
		"Wait for the compiler and fail when it fails")

	return compileCmd
}

// exportSettings writes the metadata of the current project settings into dir.
func exportSettings(dir string) (metadata.Record, error) {
	store, err := newSettingsStore()
	if err != nil {
		return metadata.Record{}, err
	}
	settings, err := store.Load()
	if err != nil {
		return metadata.Record{}, err
	}
	return exportRecord(dir, settings)
}

func exportRecord(dir string, settings *project.Settings) (metadata.Record, error) {
	rec := metadata.FromSettings(settings)
	if err := metadata.ExportDir(dir, rec); err != nil {
		return rec, err
	}
	if config.Global().Export.VersionInfo {
		if _, err := metadata.WriteVersionInfo(dir, rec); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func executeSetupInstaller(cmd *cobra.Command, args []string) error {
	buildsDir, err := config.BuildsDir()
	if err != nil {
		return err
	}
	rec, err := exportSettings(buildsDir)
	if err != nil {
		return fmt.Errorf("exporting build metadata: %w", err)
	}

	prov, err := newProvisioner()
	if err != nil {
		return err
	}
	if prov.TemplateDir != "" && prov.ScriptExists() {
		// EnsureScript copies the template only when the script is missing
		if _, err := prov.CopyTemplate(); err != nil {
			return fmt.Errorf("copying installer template: %w", err)
		}
	}
	created, err := prov.EnsureScript()
	if err != nil {
		return fmt.Errorf("creating installer script: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Build metadata (version %s) exported to %s\n", rec.Version, buildsDir)
	if created {
		fmt.Fprintf(out, "Installer script created at %s\n", prov.ScriptPath())
	} else {
		fmt.Fprintf(out, "Installer script %s already exists\n", prov.ScriptPath())
	}
	return nil
}

func executeExportInfo(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) > 0 {
		dir = args[0]
	} else {
		installersDir, err := config.InstallersDir()
		if err != nil {
			return err
		}
		dir = installersDir
	}

	rec, err := exportSettings(dir)
	if err != nil {
		return fmt.Errorf("exporting build metadata: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Build metadata (version %s) exported to %s\n", rec.Version, dir)
	return nil
}

func executeCompileInstaller(cmd *cobra.Command, args []string) error {
	compiler, err := newCompiler(newConfirmer(), waitForCompiler)
	if err != nil {
		return err
	}
	launch, err := compiler.Compile(cmd.Context())
	if err != nil {
		return fmt.Errorf("compiling installer: %w", err)
	}
	if launch == nil {
		return fmt.Errorf("installer compiler was not started")
	}

	out := cmd.OutOrStdout()
	if launch.Waited {
		fmt.Fprintf(out, "Installer compiled from %s\n", launch.Script)
	} else {
		fmt.Fprintf(out, "Inno Setup Compiler started (pid %d) for %s\n", launch.Pid, launch.Script)
	}
	return nil
}
