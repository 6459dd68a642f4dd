package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// VersionInfo represents parsed engine version components. Engine
// version tags look like "2021.3.16f1": major year (or legacy major),
// minor, patch, and a typed build suffix.
type VersionInfo struct {
	Major int
	Minor int
	Patch int
	Build int
	// BuildType is the release channel letter in the tag: f (final),
	// p (patch), b (beta), a (alpha). Empty when the tag has no suffix.
	BuildType string
}

// ParseEngineVersion parses an engine version tag and returns the major
// version number
func ParseEngineVersion(version string) (int, error) {
	if version == "" {
		return 0, fmt.Errorf("version string cannot be empty")
	}

	// Split version by dots and take the first part
	parts := strings.Split(version, ".")
	if len(parts) == 0 {
		return 0, fmt.Errorf("invalid version format: %s", version)
	}

	majorVersion, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid major version number: %s", parts[0])
	}

	// Legacy engines use small majors (3.x-5.x), year-based releases run
	// 2017-2023, and the current scheme starts at 6000.
	valid := (majorVersion >= 3 && majorVersion <= 5) ||
		(majorVersion >= 2017 && majorVersion <= 2023) ||
		majorVersion >= 6000
	if !valid {
		return 0, fmt.Errorf("unsupported engine version: %d", majorVersion)
	}

	return majorVersion, nil
}

// ParseVersionInfo parses a full engine version tag (e.g. "2021.3.16f1")
// into components
func ParseVersionInfo(version string) (*VersionInfo, error) {
	if version == "" {
		return nil, fmt.Errorf("version string cannot be empty")
	}

	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid version format: %s (expected at least major.minor)", version)
	}

	info := &VersionInfo{}
	var err error

	// Parse major version
	info.Major, err = strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid major version: %s", parts[0])
	}

	// Parse minor version
	info.Minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid minor version: %s", parts[1])
	}

	// Parse patch and build suffix (optional, e.g. "16f1")
	if len(parts) > 2 && parts[2] != "" {
		info.Patch, info.BuildType, info.Build, err = parsePatchSegment(parts[2])
		if err != nil {
			return nil, err
		}
	}

	return info, nil
}

// parsePatchSegment splits "16f1" into patch 16, build type "f", build 1.
// A bare number ("16") has no build suffix.
func parsePatchSegment(segment string) (patch int, buildType string, build int, err error) {
	split := strings.IndexFunc(segment, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if split == -1 {
		patch, err = strconv.Atoi(segment)
		if err != nil {
			return 0, "", 0, fmt.Errorf("invalid patch version: %s", segment)
		}
		return patch, "", 0, nil
	}

	patch, err = strconv.Atoi(segment[:split])
	if err != nil {
		return 0, "", 0, fmt.Errorf("invalid patch version: %s", segment)
	}

	buildType = segment[split : split+1]
	switch buildType {
	case "f", "p", "b", "a":
	default:
		return 0, "", 0, fmt.Errorf("invalid build type in version segment: %s", segment)
	}

	rest := segment[split+1:]
	if rest != "" {
		build, err = strconv.Atoi(rest)
		if err != nil {
			return 0, "", 0, fmt.Errorf("invalid build number in version segment: %s", segment)
		}
	}

	return patch, buildType, build, nil
}

// CompareVersions compares two engine version tags
// Returns -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) (int, error) {
	info1, err := ParseVersionInfo(v1)
	if err != nil {
		return 0, fmt.Errorf("error parsing version %s: %w", v1, err)
	}

	info2, err := ParseVersionInfo(v2)
	if err != nil {
		return 0, fmt.Errorf("error parsing version %s: %w", v2, err)
	}

	pairs := [][2]int{
		{info1.Major, info2.Major},
		{info1.Minor, info2.Minor},
		{info1.Patch, info2.Patch},
		{info1.Build, info2.Build},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1, nil
		}
		if p[0] > p[1] {
			return 1, nil
		}
	}

	return 0, nil
}
