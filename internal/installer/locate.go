package installer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/innobuild/innobuild/internal/utils/file"
)

var (
	// ErrCompilerNotFound is returned when no strategy resolves the Inno Setup compiler.
	ErrCompilerNotFound = errors.New("inno setup compiler not found")
	// ErrRegistryUnsupported is returned by the registry lookup off Windows.
	ErrRegistryUnsupported = errors.New("registry lookup is only available on windows")
)

// ParseCommand extracts the executable from a shell open command such as
// `"C:\Program Files (x86)\Inno Setup 6\Compil32.exe" "%1"`: the value is
// split on double quotes and the first piece ending in .exe wins.
func ParseCommand(value string) (string, bool) {
	for _, entry := range strings.Split(value, `"`) {
		if strings.HasSuffix(strings.ToLower(entry), ".exe") {
			return entry, true
		}
	}
	return "", false
}

// Locator resolves the path of the Inno Setup compiler.
type Locator interface {
	Locate() (string, error)
}

// ExplicitLocator returns a configured path when the file exists.
type ExplicitLocator struct {
	Path string
}

func (l ExplicitLocator) Locate() (string, error) {
	if strings.TrimSpace(l.Path) == "" {
		return "", fmt.Errorf("%w: no compiler path configured", ErrCompilerNotFound)
	}
	if !file.IsFile(l.Path) {
		return "", fmt.Errorf("%w: %s does not exist", ErrCompilerNotFound, l.Path)
	}
	return l.Path, nil
}

// RegistryLocator reads the default value of an HKEY_LOCAL_MACHINE key holding
// the .iss open command.
type RegistryLocator struct {
	Key string
	// Lookup reads the key's default value. Nil uses the Windows registry.
	Lookup func(key string) (string, error)
}

func (l RegistryLocator) Locate() (string, error) {
	lookup := l.Lookup
	if lookup == nil {
		lookup = readRegistryCommand
	}

	value, err := lookup(l.Key)
	if err != nil {
		return "", err
	}
	path, ok := ParseCommand(value)
	if !ok {
		return "", fmt.Errorf("%w: no executable in %q", ErrCompilerNotFound, value)
	}
	return path, nil
}

// ChainLocator tries each locator in order.
type ChainLocator []Locator

func (c ChainLocator) Locate() (string, error) {
	var errs []error
	for _, l := range c {
		path, err := l.Locate()
		if err == nil {
			return path, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", ErrCompilerNotFound
	}
	return "", fmt.Errorf("%w: %w", ErrCompilerNotFound, errors.Join(errs...))
}

// NewLocator prefers an explicit compiler path and falls back to the registry.
func NewLocator(compilerPath, registryKey string) Locator {
	var chain ChainLocator
	if strings.TrimSpace(compilerPath) != "" {
		chain = append(chain, ExplicitLocator{Path: compilerPath})
	}
	if registryKey != "" {
		chain = append(chain, RegistryLocator{Key: registryKey})
	}
	return chain
}
