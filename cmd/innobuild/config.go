package main

import (
	"fmt"

	"github.com/innobuild/innobuild/internal/config"
	"github.com/spf13/cobra"
)

// createConfigCommand creates the config subcommand
func createConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the innobuild configuration.

Available commands:
  init    Initialize a new configuration file with default values`,
	}

	configCmd.AddCommand(createConfigInitCommand())

	return configCmd
}

// createConfigInitCommand creates the config init subcommand
func createConfigInitCommand() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init [config-file]",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new configuration file with default values.

If no path is specified, the config is created in the current directory as innobuild.yml

Examples:
  # Create config in the Unity project root
  innobuild config init

  # Create config in the user's home directory
  innobuild config init ~/.config/innobuild/config.yml`,
		Args: cobra.MaximumNArgs(1),
		RunE: executeConfigInit,
	}

	return initCmd
}

// executeConfigInit handles the config init command logic
func executeConfigInit(cmd *cobra.Command, args []string) error {
	configPath := "innobuild.yml"
	if len(args) > 0 {
		configPath = args[0]
	}

	defaultConfig := config.DefaultGlobalConfig()
	if err := defaultConfig.SaveGlobalConfigWithComments(configPath); err != nil {
		return fmt.Errorf("failed to save config file: %v", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	fmt.Fprintf(out, "\nDefault configuration settings:\n")
	fmt.Fprintf(out, "  Project Directory: %s\n", defaultConfig.ProjectDir)
	fmt.Fprintf(out, "  Settings File: %s\n", defaultConfig.SettingsFile)
	fmt.Fprintf(out, "  Builds Directory: %s\n", defaultConfig.BuildsDir)
	fmt.Fprintf(out, "  Installers Directory: %s\n", defaultConfig.InstallersDir)
	fmt.Fprintf(out, "  Installer Script: %s\n", defaultConfig.Installer.Script)
	fmt.Fprintf(out, "  Log Level: %s\n", defaultConfig.Logging.Level)
	fmt.Fprintf(out, "\nEdit the configuration file to customize these settings.\n")

	return nil
}
