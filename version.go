package driverium

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a dotted Chrome/ChromeDriver release identifier such as
// "120.0.6099.109". Versions are ordered by numeric comparison of their
// dotted parts.
type Version struct {
	raw   string
	parts []int
}

// ParseVersion parses a dotted version string. It fails with [ErrParse] when
// any part is not a decimal number.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("%w: empty version", ErrParse)
	}
	fields := strings.Split(s, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: version %q", ErrParse, s)
		}
		parts[i] = n
	}
	return Version{raw: s, parts: parts}, nil
}

// String returns the original dotted form.
func (v Version) String() string { return v.raw }

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool { return len(v.parts) == 0 }

// Major returns the leading version number, or 0 for the zero Version.
func (v Version) Major() int {
	if len(v.parts) == 0 {
		return 0
	}
	return v.parts[0]
}

// Compare orders two versions by their dotted numeric parts. It returns -1
// when v is older than o, 0 when equal, and +1 when newer. Missing parts
// compare as zero, so "120.0" equals "120.0.0".
func (v Version) Compare(o Version) int {
	n := len(v.parts)
	if len(o.parts) > n {
		n = len(o.parts)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v.parts) {
			a = v.parts[i]
		}
		if i < len(o.parts) {
			b = o.parts[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

// buildLine returns the version truncated to its major.minor.build parts,
// the key expected by the legacy LATEST_RELEASE endpoint.
func (v Version) buildLine() string {
	i := strings.LastIndexByte(v.raw, '.')
	if i < 0 {
		return v.raw
	}
	return v.raw[:i]
}

func (v Version) numParts() int { return len(v.parts) }

func (v Version) part(i int) int { return v.parts[i] }
