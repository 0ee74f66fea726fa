package main

import (
	"fmt"

	"github.com/innobuild/innobuild/internal/bundleversion"
	"github.com/innobuild/innobuild/internal/config/version"
	"github.com/spf13/cobra"
)

var forceVersion bool = false

// createVersionCommand creates the version subcommand. Without a subcommand it
// prints the tool version; show, bump and set work on the bundle version.
func createVersionCommand() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		Run:   executeVersion,
	}

	versionCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the project's bundle version",
		Args:  cobra.NoArgs,
		RunE:  executeVersionShow,
	})
	versionCmd.AddCommand(&cobra.Command{
		Use:   "bump",
		Short: "Increment the patch number of the bundle version",
		Args:  cobra.NoArgs,
		RunE:  executeVersionBump,
	})

	setCmd := &cobra.Command{
		Use:   "set VERSION",
		Short: "Set the bundle version",
		Long: `Set the bundle version to VERSION (major.minor.patch). Setting a version
lower than the current one requires --force.`,
		Args: cobra.ExactArgs(1),
		RunE: executeVersionSet,
	}
	setCmd.Flags().BoolVar(&forceVersion, "force", false, "Allow moving the version backwards")
	versionCmd.AddCommand(setCmd)

	return versionCmd
}

// executeVersion handles the version command logic
func executeVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s v%s\n", version.Toolname, version.Version)
	fmt.Fprintf(out, "Build Date: %s\n", version.BuildDate)
	fmt.Fprintf(out, "Commit: %s\n", version.CommitSHA)
	fmt.Fprintf(out, "Organization: %s\n", version.Organization)
}

func executeVersionShow(cmd *cobra.Command, args []string) error {
	store, err := newSettingsStore()
	if err != nil {
		return err
	}
	v, err := store.BundleVersion()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func executeVersionBump(cmd *cobra.Command, args []string) error {
	store, err := newSettingsStore()
	if err != nil {
		return err
	}
	next, ok, err := bundleversion.Increment(store)
	if err != nil {
		return err
	}
	if !ok {
		current, _ := store.BundleVersion()
		return fmt.Errorf("bundle version %q is not major.minor.patch; use 'version set' to fix it", current)
	}
	fmt.Fprintln(cmd.OutOrStdout(), next)
	return nil
}

func executeVersionSet(cmd *cobra.Command, args []string) error {
	store, err := newSettingsStore()
	if err != nil {
		return err
	}
	v, err := bundleversion.Set(store, args[0], forceVersion)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}
