// Package version provides firmware version parsing and compatibility checks.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// MinSupported is the oldest firmware version the session engine is tested
// against. Older radios mostly work, but config sync may miss fields.
const MinSupported = "2.3.0"

// Firmware is a parsed "major.minor.patch" firmware version. Radios append a
// build hash ("2.5.1.abcdef"); anything past the patch component is ignored.
type Firmware struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a firmware version string.
func Parse(s string) (Firmware, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return Firmware{}, fmt.Errorf("invalid firmware version %q: expected major.minor[.patch]", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Firmware{}, fmt.Errorf("invalid firmware version %q: bad major component", s)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Firmware{}, fmt.Errorf("invalid firmware version %q: bad minor component", s)
	}

	v := Firmware{Major: major, Minor: minor}
	if len(parts) > 2 {
		// Patch may be absent or followed by a build hash component.
		if patch, err := strconv.Atoi(parts[2]); err == nil {
			v.Patch = patch
		}
	}
	return v, nil
}

// String returns the version as "major.minor.patch".
func (v Firmware) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 ordering v against other.
func (v Firmware) Compare(other Firmware) int {
	switch {
	case v.Major != other.Major:
		return cmp(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmp(v.Minor, other.Minor)
	default:
		return cmp(v.Patch, other.Patch)
	}
}

// AtLeast reports whether v is the same as or newer than other.
func (v Firmware) AtLeast(other Firmware) bool {
	return v.Compare(other) >= 0
}

// Supported reports whether a radio's firmware string meets MinSupported.
// Unparseable strings count as supported; custom builds report versions in
// arbitrary formats and should not trigger warnings.
func Supported(s string) bool {
	v, err := Parse(s)
	if err != nil {
		return true
	}
	minV, _ := Parse(MinSupported)
	return v.AtLeast(minV)
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
