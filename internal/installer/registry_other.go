//go:build !windows

package installer

func readRegistryCommand(string) (string, error) {
	return "", ErrRegistryUnsupported
}
