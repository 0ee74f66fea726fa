package installer

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/innobuild/innobuild/internal/utils/file"
	"github.com/innobuild/innobuild/internal/utils/logger"
	"github.com/innobuild/innobuild/internal/utils/shell"
)

// Dialog texts shown before the script is created.
const (
	MissingScriptTitle   = "Inno setup not found"
	MissingScriptMessage = "Have you setup the Inno installer script, if not would you like to create one?"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(title, message string) bool

// Launch describes a compiler run.
type Launch struct {
	Compiler string
	Script   string
	Command  string
	Args     []string
	Pid      int
	// Set only when the run was waited for.
	Waited   bool
	ExitCode int
	Output   string
}

type Compiler struct {
	Locator     Locator
	Provisioner *Provisioner
	// Confirm is asked before a missing script is created. Nil answers no.
	Confirm ConfirmFunc
	// Wrapper prefixes the command line, e.g. ["wine"].
	Wrapper []string
	// Wait blocks until the compiler exits and reports its status. By default
	// the compiler is started and left running.
	Wait     bool
	Executor shell.Executor
}

// CompileArgs returns the compiler arguments for script. Compil32 needs /cc
// to compile without opening its IDE; the ISCC console compiler takes the
// script alone.
func CompileArgs(compiler, script string) []string {
	if strings.EqualFold(baseName(compiler), "iscc.exe") {
		return []string{script}
	}
	return []string{"/cc", script}
}

// baseName handles Windows separators on every host.
func baseName(path string) string {
	return filepath.Base(strings.ReplaceAll(path, `\`, "/"))
}

// Compile locates the compiler and starts it on the installer script.
// A compiler that cannot be found is logged and reported as (nil, nil); so is
// a script that is still missing after the user was asked to create it.
func (c *Compiler) Compile(ctx context.Context) (*Launch, error) {
	log := logger.Logger()

	compilerPath, err := c.Locator.Locate()
	if err != nil {
		log.Error("No Inno Setup Compiler found")
		log.Debugf("compiler lookup: %v", err)
		return nil, nil
	}

	script := c.Provisioner.ScriptPath()
	if !c.Provisioner.ScriptExists() {
		if c.Confirm != nil && c.Confirm(MissingScriptTitle, MissingScriptMessage) {
			if _, err := c.Provisioner.EnsureScript(); err != nil {
				return nil, err
			}
		}
	}

	if !file.IsFile(compilerPath) {
		log.Errorf("Inno Setup Compiler %s does not exist", compilerPath)
		return nil, nil
	}
	if !c.Provisioner.ScriptExists() {
		log.Warnf("Installer script %s not found; skipping installer compilation", script)
		return nil, nil
	}

	name := compilerPath
	args := CompileArgs(compilerPath, script)
	if len(c.Wrapper) > 0 {
		name = c.Wrapper[0]
		args = append(append(append([]string{}, c.Wrapper[1:]...), compilerPath), args...)
	}

	runner := c.Executor
	if runner == nil {
		runner = shell.Default
	}

	launch := &Launch{
		Compiler: compilerPath,
		Script:   script,
		Command:  name,
		Args:     args,
	}

	if c.Wait {
		out, err := runner.Run(ctx, name, args...)
		launch.Waited = true
		launch.Output = out
		launch.ExitCode = shell.ExitCode(err)
		if err != nil {
			log.Errorf("Inno Setup Compiler failed with exit code %d", launch.ExitCode)
			return launch, err
		}
		log.Infof("Installer compiled from %s", script)
		return launch, nil
	}

	proc, err := runner.Start(name, args...)
	if err != nil {
		log.Errorf("Failed to start Inno Setup Compiler: %v", err)
		return nil, err
	}
	launch.Pid = proc.Pid
	log.Infof("Inno Setup Compiler started (pid %d) for %s", proc.Pid, script)
	return launch, nil
}
