// Package bundleversion parses and bumps the major.minor.patch bundle version
// stored in the project settings.
package bundleversion

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/innobuild/innobuild/internal/utils/logger"
	"golang.org/x/mod/semver"
)

// Store reads and writes the persisted bundle version.
type Store interface {
	BundleVersion() (string, error)
	SetBundleVersion(v string) error
}

type Version struct {
	Major int
	Minor int
	Patch int
}

// Default is returned by Increment for a malformed stored version. It is never written.
var Default = Version{Major: 0, Minor: 0, Patch: 1}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// CanBump reports whether Next stays within int range.
func (v Version) CanBump() bool {
	return v.Patch < math.MaxInt
}

// Next bumps the patch component. Callers check CanBump first.
func (v Version) Next() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// Parse accepts exactly three dot separated non-negative base-10 integers.
func Parse(s string) (Version, bool) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Version{}, false
	}

	var nums [3]int
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return Version{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, false
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, true
}

// Increment bumps the stored version. A stored value that does not parse is
// left untouched and (Default, false, nil) is returned.
func Increment(store Store) (Version, bool, error) {
	log := logger.Logger()

	current, err := store.BundleVersion()
	if err != nil {
		log.Errorf("Failed to read bundle version: %v", err)
		return Version{}, false, fmt.Errorf("reading bundle version: %w", err)
	}

	v, ok := Parse(current)
	if ok && !v.CanBump() {
		log.Warnf("Bundle version %q has no next patch number; leaving it unchanged", current)
		return Default, false, nil
	}
	if !ok {
		log.Warnf("Bundle version %q is not major.minor.patch; leaving it unchanged", current)
		return Default, false, nil
	}

	next := v.Next()
	if err := store.SetBundleVersion(next.String()); err != nil {
		log.Errorf("Failed to write bundle version %s: %v", next, err)
		return Version{}, false, fmt.Errorf("writing bundle version: %w", err)
	}
	log.Infof("Bundle version %s -> %s", v, next)
	return next, true, nil
}

func canonical(s string) string {
	v, ok := Parse(s)
	if !ok {
		return ""
	}
	return "v" + v.String()
}

// Compare orders two versions the way semver does. Malformed versions sort
// before well-formed ones.
func Compare(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// Set stores v. Moving the version backwards requires force.
func Set(store Store, v string, force bool) (Version, error) {
	log := logger.Logger()

	next, ok := Parse(v)
	if !ok {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor.patch", v)
	}

	current, err := store.BundleVersion()
	if err != nil {
		return Version{}, fmt.Errorf("reading bundle version: %w", err)
	}
	if _, ok := Parse(current); ok && Compare(next.String(), current) < 0 && !force {
		return Version{}, fmt.Errorf("version %s is lower than the current %s (use --force to downgrade)", next, strings.TrimSpace(current))
	}

	if err := store.SetBundleVersion(next.String()); err != nil {
		log.Errorf("Failed to write bundle version %s: %v", next, err)
		return Version{}, fmt.Errorf("writing bundle version: %w", err)
	}
	log.Infof("Bundle version set to %s", next)
	return next, nil
}
