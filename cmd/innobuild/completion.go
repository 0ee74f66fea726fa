package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// createInstallCompletionCommand creates the install-completion subcommand
func createInstallCompletionCommand() *cobra.Command {
	installCompletionCmd := &cobra.Command{
		Use:   "install-completion",
		Short: "Install shell completion script",
		Long: `Install shell completion script for Bash, Zsh, Fish, or PowerShell.
The shell is detected from $SHELL unless --shell is given.`,
		Args: cobra.NoArgs,
		RunE: executeInstallCompletion,
	}

	installCompletionCmd.Flags().String("shell", "", "Specify shell type (bash, zsh, fish, powershell)")
	installCompletionCmd.Flags().Bool("force", false, "Force overwrite existing completion files")

	return installCompletionCmd
}

func detectShell() (string, error) {
	shellEnv := os.Getenv("SHELL")
	if shellEnv == "" {
		// Windows has no $SHELL
		if os.Getenv("PSModulePath") != "" {
			return "powershell", nil
		}
		return "", fmt.Errorf("could not detect shell. Please specify with --shell flag")
	}
	for _, sh := range []string{"bash", "zsh", "fish"} {
		if strings.Contains(filepath.Base(shellEnv), sh) {
			return sh, nil
		}
	}
	return "", fmt.Errorf("unsupported shell: %s. Please specify shell with --shell flag", shellEnv)
}

func generateCompletion(root *cobra.Command, shellType string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch shellType {
	case "bash":
		err = root.GenBashCompletionV2(&buf, true)
	case "zsh":
		err = root.GenZshCompletion(&buf)
	case "fish":
		err = root.GenFishCompletion(&buf, true)
	case "powershell":
		err = root.GenPowerShellCompletionWithDesc(&buf)
	default:
		return nil, fmt.Errorf("unsupported shell type: %s", shellType)
	}
	if err != nil {
		return nil, fmt.Errorf("error generating %s completion: %w", shellType, err)
	}
	return buf.Bytes(), nil
}

// completionPath returns where the completion script for name is installed.
// Bash completions go system wide only when INNOBUILD_COMPLETION_SCOPE=system
// and /etc/bash_completion.d is writable.
func completionPath(shellType, name, homeDir string) string {
	switch shellType {
	case "bash":
		systemDir := "/etc/bash_completion.d"
		if os.Getenv("INNOBUILD_COMPLETION_SCOPE") == "system" && dirWritable(systemDir) {
			return filepath.Join(systemDir, name+".bash")
		}
		return filepath.Join(homeDir, ".bash_completion.d", name+".bash")
	case "zsh":
		return filepath.Join(homeDir, ".zsh", "completion", "_"+name)
	case "fish":
		return filepath.Join(homeDir, ".config", "fish", "completions", name+".fish")
	default:
		return filepath.Join(homeDir, "Documents", "WindowsPowerShell", name+"-completion.ps1")
	}
}

// executeInstallCompletion handles installation of shell completion scripts
func executeInstallCompletion(cmd *cobra.Command, args []string) error {
	shellType, err := cmd.Flags().GetString("shell")
	if err != nil {
		return err
	}
	userForce, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if shellType == "" {
		if shellType, err = detectShell(); err != nil {
			return err
		}
	}

	script, err := generateCompletion(cmd.Root(), shellType)
	if err != nil {
		return err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %v", err)
	}
	targetPath := completionPath(shellType, cmd.Root().Name(), homeDir)

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o700); err != nil {
		return fmt.Errorf("could not create directory %s: %v", filepath.Dir(targetPath), err)
	}
	if _, err := os.Stat(targetPath); err == nil && !userForce {
		return fmt.Errorf("completion file already exists at %s. Use --force to overwrite", targetPath)
	}
	if err := os.WriteFile(targetPath, script, 0o600); err != nil {
		return fmt.Errorf("could not write completion file: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Shell completion installed for %s at %s\n", shellType, targetPath)
	return nil
}

// dirWritable checks if the specified directory is writable by attempting to create and remove a temporary file.
func dirWritable(p string) bool {
	tf, err := os.CreateTemp(p, ".probe-*")
	if err != nil {
		return false
	}
	tf.Close()
	_ = os.Remove(tf.Name())
	return true
}
