package shell_test

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/innobuild/innobuild/internal/utils/shell"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRun(t *testing.T) {
	requireSh(t)

	out, err := shell.Run(context.Background(), "sh", "-c", "echo test-run")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out, "test-run") {
		t.Errorf("Expected output to contain 'test-run', got: %s", out)
	}
}

func TestRunExitCode(t *testing.T) {
	requireSh(t)

	_, err := shell.Run(context.Background(), "sh", "-c", "exit 3")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if code := shell.ExitCode(err); code != 3 {
		t.Errorf("ExitCode = %d, want 3", code)
	}
	if code := shell.ExitCode(nil); code != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", code)
	}
	if code := shell.ExitCode(errors.New("boom")); code != -1 {
		t.Errorf("ExitCode(other) = %d, want -1", code)
	}
}

func TestStartDoesNotWait(t *testing.T) {
	requireSh(t)

	proc, err := shell.Start("sh", "-c", "sleep 1")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if proc.Pid <= 0 {
		t.Errorf("expected a pid, got %d", proc.Pid)
	}
}

func TestStartMissingBinary(t *testing.T) {
	if _, err := shell.Start("definitely-not-a-real-binary-innobuild"); err == nil {
		t.Fatal("expected error starting a missing binary")
	}
}

func TestMockExecutor(t *testing.T) {
	originalExecutor := shell.Default
	defer func() { shell.Default = originalExecutor }()

	mock := shell.NewMockExecutor([]shell.MockCommand{
		{Pattern: "Unity -batchmode", Output: "Build succeeded\n"},
		{Pattern: "broken.exe", Error: errors.New("cannot start")},
	})
	shell.Default = mock

	out, err := shell.Run(context.Background(), "Unity", "-batchmode", "-quit")
	if err != nil || out != "Build succeeded\n" {
		t.Fatalf("unexpected Run result %q, %v", out, err)
	}

	if _, err := shell.Start("ISCC.exe", "/cc", "installer.iss"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := shell.Start("broken.exe"); err == nil {
		t.Fatal("expected mocked start error")
	}

	if len(mock.Started) != 1 || mock.Started[0] != "ISCC.exe /cc installer.iss" {
		t.Errorf("unexpected Started: %v", mock.Started)
	}
	if len(mock.Ran) != 1 {
		t.Errorf("unexpected Ran: %v", mock.Ran)
	}
}
