// Package pyver models the Python package version strings handled by the
// release tooling: a major.minor.patch core with an optional ".devN"
// development suffix as used for nightly builds.
package pyver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Version represents a package version (major.minor.patch[pre][.devN]).
type Version struct {
	Major int
	Minor int
	Patch int
	Pre   string // attached pre-release label ("rc1", "a0"), empty for final releases
	Dev   string // numeric dev suffix without the ".dev" prefix, empty for releases
}

var (
	// versionRegex matches version strings of the form "1.2.3" with an
	// optional attached pre-release label ("1.2.3rc1") and an optional
	// ".dev2024010112" suffix. It captures:
	//   1. Major version
	//   2. Minor version
	//   3. Patch version
	//   4. (optional) Pre-release label
	//   5. (optional) Dev suffix digits
	versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)([0-9a-zA-Z]*)(?:\.dev(\d+))?$`)

	// errInvalidVersion is returned when a version string does not conform
	// to the expected format.
	errInvalidVersion = errors.New("invalid version format")
)

// maxVersionLength is the maximum allowed length for a version string.
const maxVersionLength = 64

// String returns the string representation of the version.
func (v Version) String() string {
	var sb strings.Builder
	sb.Grow(16)
	sb.WriteString(strconv.Itoa(v.Major))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Minor))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Patch))
	sb.WriteString(v.Pre)
	if v.Dev != "" {
		sb.WriteString(".dev")
		sb.WriteString(v.Dev)
	}
	return sb.String()
}

// IsDev reports whether the version carries a dev suffix.
func (v Version) IsDev() bool {
	return v.Dev != ""
}

// Parse parses a version string and returns a Version.
//
// Supported formats:
//   - "1.2.3" (release version)
//   - "1.2.3rc1" (pre-release, label attached to the patch number)
//   - "1.2.3.dev2024010112" (nightly/dev version)
//
// Returns errInvalidVersion (wrapped) when the input exceeds
// maxVersionLength or does not match the expected pattern.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > maxVersionLength {
		return Version{}, fmt.Errorf("%w: version string exceeds maximum length of %d", errInvalidVersion, maxVersionLength)
	}

	matches := versionRegex.FindStringSubmatch(trimmed)
	if matches == nil {
		return Version{}, fmt.Errorf("%w: %q", errInvalidVersion, trimmed)
	}

	major, err := strconv.Atoi(matches[1])
	if err != nil {
		return Version{}, fmt.Errorf("%w: invalid major version: %s", errInvalidVersion, err.Error())
	}
	minor, err := strconv.Atoi(matches[2])
	if err != nil {
		return Version{}, fmt.Errorf("%w: invalid minor version: %s", errInvalidVersion, err.Error())
	}
	patch, err := strconv.Atoi(matches[3])
	if err != nil {
		return Version{}, fmt.Errorf("%w: invalid patch version: %s", errInvalidVersion, err.Error())
	}

	return Version{Major: major, Minor: minor, Patch: patch, Pre: matches[4], Dev: matches[5]}, nil
}

// nightlyTimestampLayout renders timestamps at hour resolution (YYYYMMDDHH),
// matching the suffix format used by nightly wheel names.
const nightlyTimestampLayout = "2006010215"

// Nightly returns a copy of v stamped with a dev suffix derived from t.
func (v Version) Nightly(t time.Time) Version {
	stamped := v
	stamped.Dev = t.Format(nightlyTimestampLayout)
	return stamped
}

// Compare compares two versions. It returns -1 if v < other, 0 if equal,
// and +1 if v > other. A pre-release or dev version has lower precedence
// than the release with the same core (1.2.3rc1 < 1.2.3 and
// 1.2.3.dev1 < 1.2.3); two pre-release labels compare lexically and two dev
// suffixes compare by their numeric timestamp value.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}

	switch {
	case v.Pre == other.Pre:
	case v.Pre == "":
		return 1
	case other.Pre == "":
		return -1
	default:
		return strings.Compare(v.Pre, other.Pre)
	}

	switch {
	case v.Dev == "" && other.Dev == "":
		return 0
	case v.Dev == "":
		return 1
	case other.Dev == "":
		return -1
	default:
		return strings.Compare(v.Dev, other.Dev)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
