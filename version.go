package archive

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is a schema revision stamped on archived types.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// V is shorthand for Version{major, minor, patch}.
func V(major, minor, patch uint32) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// ParseVersion parses the canonical "major.minor.patch" form produced by String.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: version %q must have three components", ErrMalformed, s)
	}
	var nums [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || p == "" || (len(p) > 1 && p[0] == '0') {
			return Version{}, fmt.Errorf("%w: invalid version component %q in %q", ErrMalformed, p, s)
		}
		nums[i] = uint32(n)
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1 ordering v against o lexicographically.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, o.Patch)
}

func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// IsZero reports whether v is 0.0.0, the version of data that never stamped one.
func (v Version) IsZero() bool { return v == Version{} }
