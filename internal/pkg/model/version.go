package model

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a firmware version. Firmware reports zero padded components such as
// "1.07.3", which strict semver rejects, so numeric components are normalised
// before the version is handed to semver for validation and ordering.
type Version struct {
	Major, Minor, Patch int
	Prerelease          string
	Build               string
}

// ParseVersion accepts one to three dot separated numeric components, optionally
// followed by a semver pre-release ("-rc1") and build ("+build5") suffix. Missing
// components are zero, so "1.11" equals "1.11.0".
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Version{}, &UnsupportedFirmwareError{Firmware: s, Reason: "empty version"}
	}
	core, build, hasBuild := strings.Cut(raw, "+")
	core, pre, hasPre := strings.Cut(core, "-")
	if (hasBuild && build == "") || (hasPre && pre == "") {
		return Version{}, &UnsupportedFirmwareError{Firmware: s, Reason: "empty suffix"}
	}

	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		return Version{}, &UnsupportedFirmwareError{Firmware: s, Reason: "too many components"}
	}
	nums := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || !isDigits(p) {
			return Version{}, &UnsupportedFirmwareError{Firmware: s, Reason: fmt.Sprintf("component %q is not a number", p)}
		}
		nums[i] = n
	}

	v := Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Prerelease: pre, Build: build}
	if !semver.IsValid(v.canonical()) {
		return Version{}, &UnsupportedFirmwareError{Firmware: s, Reason: "not a semantic version"}
	}
	return v, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// MustParseVersion is for package level constants only.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) canonical() string {
	return "v" + v.String()
}

// Compare returns -1, 0 or +1 in semver order: a pre-release sorts before its
// release and build metadata is ignored.
func (v Version) Compare(other Version) int {
	return semver.Compare(v.canonical(), other.canonical())
}

func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}
