package shell

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/innobuild/innobuild/internal/utils/logger"
)

// Process describes a child started without waiting for it.
type Process struct {
	Pid  int
	Path string
	Args []string
}

// Executor starts external programs. Default is swapped for a MockExecutor in tests.
type Executor interface {
	// Start launches name and returns as soon as the process exists. The child
	// is released: its exit status is never collected.
	Start(name string, args ...string) (*Process, error)
	// Run launches name, waits for it and returns its combined output.
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Default is the executor used by the package level helpers.
var Default Executor = &execExecutor{}

// Start launches a detached process through Default.
func Start(name string, args ...string) (*Process, error) {
	return Default.Start(name, args...)
}

// Run runs a process to completion through Default.
func Run(ctx context.Context, name string, args ...string) (string, error) {
	return Default.Run(ctx, name, args...)
}

// ExitCode extracts the exit status from an error returned by Run, or -1.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err == nil {
		return 0
	}
	return -1
}

// CommandLine renders name and args the way they are logged.
func CommandLine(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

type execExecutor struct{}

func (e *execExecutor) Start(name string, args ...string) (*Process, error) {
	log := logger.Logger()
	log.Debugf("Start: [%s]", CommandLine(name, args...))

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	proc := &Process{Pid: cmd.Process.Pid, Path: cmd.Path, Args: args}
	if err := cmd.Process.Release(); err != nil {
		log.Warnf("Failed to release process %d: %v", proc.Pid, err)
	}
	return proc, nil
}

func (e *execExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	log := logger.Logger()
	log.Debugf("Exec: [%s]", CommandLine(name, args...))

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		if outputStr != "" {
			log.Info(outputStr)
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", CommandLine(name, args...), err)
	}
	if outputStr != "" {
		log.Debug(outputStr)
	}
	return outputStr, nil
}

// MockCommand is a canned reply for every command line containing Pattern.
type MockCommand struct {
	Pattern string
	Output  string
	Error   error
}

// MockExecutor records command lines instead of running them.
type MockExecutor struct {
	mu       sync.Mutex
	commands []MockCommand
	Started  []string
	Ran      []string
}

func NewMockExecutor(commands []MockCommand) *MockExecutor {
	return &MockExecutor{commands: commands}
}

func (m *MockExecutor) match(line string) (MockCommand, bool) {
	for _, c := range m.commands {
		if strings.Contains(line, c.Pattern) {
			return c, true
		}
	}
	return MockCommand{}, false
}

func (m *MockExecutor) Start(name string, args ...string) (*Process, error) {
	line := CommandLine(name, args...)

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.match(line); ok && c.Error != nil {
		return nil, c.Error
	}
	m.Started = append(m.Started, line)
	return &Process{Pid: 4242 + len(m.Started), Path: name, Args: args}, nil
}

func (m *MockExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	line := CommandLine(name, args...)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Ran = append(m.Ran, line)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c, ok := m.match(line); ok {
		return c.Output, c.Error
	}
	return "", nil
}
