package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// KernelVersion is the running kernel's release as reported by uname(2).
// Major and Minor are zero when the release string could not be parsed.
type KernelVersion struct {
	Release string
	Major   int
	Minor   int
}

// AtLeast reports whether the kernel is major.minor or newer.
func (v KernelVersion) AtLeast(major, minor int) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

func (v KernelVersion) String() string {
	if v.Release == "" {
		return "unknown"
	}
	return v.Release
}

// parseKernelRelease extracts major and minor numbers from a release string
// such as "6.8.0-45-generic" or "5.10.0+".
func parseKernelRelease(release string) (KernelVersion, error) {
	v := KernelVersion{Release: release}

	parts := strings.SplitN(release, ".", 3)
	if len(parts) < 2 {
		return v, fmt.Errorf("unrecognized kernel release %q", release)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return v, fmt.Errorf("unrecognized kernel release %q", release)
	}

	minorStr := parts[1]
	if idx := strings.IndexFunc(minorStr, func(r rune) bool { return r < '0' || r > '9' }); idx > 0 {
		minorStr = minorStr[:idx]
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil {
		return v, fmt.Errorf("unrecognized kernel release %q", release)
	}

	v.Major = major
	v.Minor = minor
	return v, nil
}
