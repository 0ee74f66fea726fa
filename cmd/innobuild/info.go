package main

import (
	"fmt"

	"github.com/innobuild/innobuild/internal/config"
	"github.com/innobuild/innobuild/internal/history"
	"github.com/innobuild/innobuild/internal/installer"
	"github.com/innobuild/innobuild/internal/metadata"
	"github.com/innobuild/innobuild/internal/report"
	"github.com/spf13/cobra"
)

var historyLimit int = 20

// createInfoCommand creates the info subcommand
func createInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show project settings, paths and installer status",
		Args:  cobra.NoArgs,
		RunE:  executeInfo,
	}
}

// createHistoryCommand creates the history subcommand
func createHistoryCommand() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent builds",
		Args:  cobra.NoArgs,
		RunE:  executeHistory,
	}

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of builds to show")

	return historyCmd
}

func executeInfo(cmd *cobra.Command, args []string) error {
	var info report.Info
	var err error

	if info.ProjectDir, err = config.ProjectDir(); err != nil {
		return err
	}
	if info.SettingsPath, err = config.SettingsPath(); err != nil {
		return err
	}
	if info.BuildsDir, err = config.BuildsDir(); err != nil {
		return err
	}
	prov, err := newProvisioner()
	if err != nil {
		return err
	}
	info.InstallersDir = prov.InstallersDir
	info.ScriptPath = prov.ScriptPath()
	info.ScriptExists = prov.ScriptExists()
	info.Setup = metadata.IsSetup(info.BuildsDir)

	store, err := newSettingsStore()
	if err != nil {
		return err
	}
	if settings, err := store.Load(); err != nil {
		info.SettingsError = err
	} else {
		info.ProductName = settings.Player.ProductName
		info.CompanyName = settings.Player.CompanyName
		info.ApplicationID = settings.Player.ApplicationIdentifier
		info.BundleVersion = settings.Player.BundleVersion
		info.ActiveTarget = settings.Build.ActiveTarget
		info.Scenes = settings.EnabledScenes()
	}

	cfg := config.Global().Installer
	info.CompilerPath, info.CompilerError = installer.NewLocator(cfg.CompilerPath, cfg.RegistryKey).Locate()

	report.DrawInfo(cmd.OutOrStdout(), info)
	return nil
}

func executeHistory(cmd *cobra.Command, args []string) error {
	if !config.Global().History.Enabled {
		return fmt.Errorf("build history is disabled (history.enabled)")
	}
	path, err := config.HistoryPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	report.DrawHistory(cmd.OutOrStdout(), entries)
	return nil
}
