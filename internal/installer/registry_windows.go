//go:build windows

package installer

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

func readRegistryCommand(key string) (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, key, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("%w: opening HKLM\\%s: %v", ErrCompilerNotFound, key, err)
	}
	defer k.Close()

	value, _, err := k.GetStringValue("")
	if err != nil {
		return "", fmt.Errorf("%w: reading HKLM\\%s: %v", ErrCompilerNotFound, key, err)
	}
	return value, nil
}
