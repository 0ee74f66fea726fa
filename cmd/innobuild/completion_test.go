package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func runInstallCompletion(t *testing.T, args ...string) error {
	t.Helper()

	// Minimal root command so that cobra can generate completion for it
	root := &cobra.Command{Use: "innobuild"}
	root.AddCommand(createInstallCompletionCommand())
	root.SetOut(&strings.Builder{})
	root.SetArgs(append([]string{"install-completion"}, args...))
	_, err := root.ExecuteC()
	return err
}

func useTempHome(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("USERPROFILE", tmp)
	t.Setenv("INNOBUILD_COMPLETION_SCOPE", "")
	return tmp
}

func TestInstallCompletion_UnknownShellDetection(t *testing.T) {
	useTempHome(t)
	t.Setenv("SHELL", "/bin/unknown-shell")
	t.Setenv("PSModulePath", "")

	err := runInstallCompletion(t)
	if err == nil {
		t.Fatalf("expected error for unsupported shell detection, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported shell") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInstallCompletion_NoShell(t *testing.T) {
	useTempHome(t)
	t.Setenv("SHELL", "")
	t.Setenv("PSModulePath", "")

	if err := runInstallCompletion(t); err == nil || !strings.Contains(err.Error(), "could not detect shell") {
		t.Fatalf("expected detection error, got %v", err)
	}
}

func TestInstallCompletion_DetectsShell(t *testing.T) {
	home := useTempHome(t)
	t.Setenv("SHELL", "/usr/bin/zsh")

	if err := runInstallCompletion(t); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".zsh", "completion", "_innobuild")); err != nil {
		t.Fatalf("expected zsh completion file: %v", err)
	}
}

func TestInstallCompletion_Shells(t *testing.T) {
	tests := []struct {
		shell string
		path  []string
	}{
		{"bash", []string{".bash_completion.d", "innobuild.bash"}},
		{"zsh", []string{".zsh", "completion", "_innobuild"}},
		{"fish", []string{".config", "fish", "completions", "innobuild.fish"}},
		{"powershell", []string{"Documents", "WindowsPowerShell", "innobuild-completion.ps1"}},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			home := useTempHome(t)
			if err := runInstallCompletion(t, "--shell", tt.shell); err != nil {
				t.Fatalf("completion for %s failed: %v", tt.shell, err)
			}
			target := filepath.Join(append([]string{home}, tt.path...)...)
			data, err := os.ReadFile(target)
			if err != nil {
				t.Fatalf("expected completion file at %s: %v", target, err)
			}
			if !strings.Contains(string(data), "innobuild") {
				t.Errorf("completion script does not mention the command")
			}
		})
	}
}

func TestInstallCompletion_Force(t *testing.T) {
	useTempHome(t)

	if err := runInstallCompletion(t, "--shell", "fish"); err != nil {
		t.Fatalf("first install failed: %v", err)
	}
	err := runInstallCompletion(t, "--shell", "fish")
	if err == nil || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected already-exists error, got %v", err)
	}
	if err := runInstallCompletion(t, "--shell", "fish", "--force"); err != nil {
		t.Fatalf("forced install failed: %v", err)
	}
}

func TestInstallCompletion_UnsupportedShellFlag(t *testing.T) {
	useTempHome(t)
	if err := runInstallCompletion(t, "--shell", "tcsh"); err == nil || !strings.Contains(err.Error(), "unsupported shell type") {
		t.Fatalf("expected unsupported shell type error, got %v", err)
	}
}
