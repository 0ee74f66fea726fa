package main

import (
	"fmt"
	"os"

	"github.com/innobuild/innobuild/internal/config"
	"github.com/innobuild/innobuild/internal/utils/logger"
	"github.com/innobuild/innobuild/internal/utils/security"
	"github.com/spf13/cobra"
)

// Command-line flags that can override config file settings
var (
	configFile  string = "" // Path to config file
	logLevel    string = "" // Empty means use config file value
	logFilePath string = "" // Empty means use config file value
	projectDir  string = "" // Empty means use config file value
	assumeYes   bool
	assumeNo    bool
)

var (
	actualConfigFile string
	loggerCleanup    func()
)

func main() {
	cobra.EnableTraverseRunHooks = true

	rootCmd := createRootCommand()
	security.AttachRecursive(rootCmd, security.DefaultLimits())

	err := rootCmd.Execute()
	if loggerCleanup != nil {
		loggerCleanup()
	}
	if err != nil {
		os.Exit(1)
	}
}

// createRootCommand creates and configures the root cobra command with all subcommands
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "innobuild",
		Short: "Build companion for Unity projects packaged with Inno Setup",
		Long: `innobuild runs around a Unity player build. Before the build it bumps the
project's bundle version; after a successful build it exports the build
metadata next to the player and, for standalone builds, starts the Inno Setup
compiler on the project's installer script.

Use 'innobuild --help' to see available commands.
Use 'innobuild <command> --help' for more information about a command.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "",
		"Log file path to tee logs (overrides configuration file)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", "",
		"Unity project directory (overrides configuration file)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false,
		"Answer yes to every question")
	rootCmd.PersistentFlags().BoolVar(&assumeNo, "no", false,
		"Answer no to every question")
	rootCmd.MarkFlagsMutuallyExclusive("yes", "no")

	// Add all subcommands
	rootCmd.AddCommand(createQuickBuildCommand())
	rootCmd.AddCommand(createPreBuildCommand())
	rootCmd.AddCommand(createPostBuildCommand())
	rootCmd.AddCommand(createSetupInstallerCommand())
	rootCmd.AddCommand(createExportInfoCommand())
	rootCmd.AddCommand(createCompileInstallerCommand())
	rootCmd.AddCommand(createInfoCommand())
	rootCmd.AddCommand(createHistoryCommand())
	rootCmd.AddCommand(createVersionCommand())
	rootCmd.AddCommand(createConfigCommand())
	rootCmd.AddCommand(createInstallCompletionCommand())

	return rootCmd
}

// initConfig loads the configuration file, applies flag overrides and sets up
// the logger. It runs before every subcommand.
func initConfig(cmd *cobra.Command, args []string) error {
	configFilePath := configFile
	if configFilePath == "" {
		configFilePath = config.FindConfigFile()
	}

	globalConfig, err := config.LoadGlobalConfig(configFilePath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error loading configuration: %v\n", err)
		return err
	}

	if logLevel != "" {
		globalConfig.Logging.Level = logLevel
	}
	if logFilePath != "" {
		globalConfig.Logging.File = logFilePath
	}
	if projectDir != "" {
		globalConfig.ProjectDir = projectDir
	}
	if err := globalConfig.Validate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Invalid configuration: %v\n", err)
		return err
	}

	config.SetGlobal(globalConfig)
	actualConfigFile = configFilePath

	_, cleanup, err := logger.InitWithConfig(logger.Config{
		Level:    globalConfig.Logging.Level,
		FilePath: globalConfig.Logging.File,
	})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error initializing logger: %v\n", err)
		return err
	}
	// Reconfiguring closes a replaced log file; only the latest cleanup is kept.
	loggerCleanup = cleanup

	log := logger.Logger()
	if actualConfigFile != "" {
		log.Infof("Using configuration from: %s", actualConfigFile)
	}
	log.Debugf("Config: project_dir=%s, builds_dir=%s, installers_dir=%s, log_level=%s",
		globalConfig.ProjectDir, globalConfig.BuildsDir, globalConfig.InstallersDir, globalConfig.Logging.Level)
	return nil
}
