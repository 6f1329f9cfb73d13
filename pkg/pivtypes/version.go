package pivtypes

import "fmt"

// Version is a firmware version triple, totally ordered. Every capability
// check in the engine goes through AtLeast/LessThan so that version numbers
// stay in one place per feature.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion decodes the three-byte GET VERSION response.
func ParseVersion(data []byte) (Version, error) {
	if len(data) < 3 {
		return Version{}, fmt.Errorf("pivtypes: version response too short: %d bytes", len(data))
	}
	return Version{Major: int(data[0]), Minor: int(data[1]), Patch: int(data[2])}, nil
}

func (v Version) compare(major, minor, patch int) int {
	if v.Major != major {
		return v.Major - major
	}
	if v.Minor != minor {
		return v.Minor - minor
	}
	return v.Patch - patch
}

// AtLeast reports whether v is the given version or newer.
func (v Version) AtLeast(major, minor, patch int) bool {
	return v.compare(major, minor, patch) >= 0
}

// LessThan reports whether v is older than the given version.
func (v Version) LessThan(major, minor, patch int) bool {
	return v.compare(major, minor, patch) < 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
