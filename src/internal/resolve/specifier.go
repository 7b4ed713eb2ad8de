// Package resolve turns user-supplied version specifiers into concrete
// versions from the catalog.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Specifier is either an exact version or a range constraint.
type Specifier struct {
	Raw   string
	Exact *semver.Version
	Range *semver.Constraints
}

// IsExact reports whether the specifier names a single version.
func (s Specifier) IsExact() bool {
	return s.Exact != nil
}

func (s Specifier) String() string {
	return s.Raw
}

// SpecifierError is returned for input that is neither an exact version nor
// a valid range.
type SpecifierError struct {
	Specifier string
	Err       error
}

func (e *SpecifierError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid version specifier %q: %v", e.Specifier, e.Err)
	}
	return fmt.Sprintf("invalid version specifier %q", e.Specifier)
}

func (e *SpecifierError) Unwrap() error {
	return e.Err
}

// IsSpecifierError checks if an error is a malformed specifier.
func IsSpecifierError(err error) bool {
	var target *SpecifierError
	return errors.As(err, &target)
}

// ParseSpecifier parses s as an exact version (optionally v-prefixed) or,
// failing that, as a range expression.
func ParseSpecifier(s string) (Specifier, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Specifier{}, &SpecifierError{Specifier: s, Err: errors.New("empty")}
	}

	if v, err := ParseExact(raw); err == nil {
		return Specifier{Raw: raw, Exact: v}, nil
	}

	c, err := semver.NewConstraint(raw)
	if err != nil {
		return Specifier{}, &SpecifierError{Specifier: s, Err: err}
	}
	return Specifier{Raw: raw, Range: c}, nil
}

// ParseExact parses a strict MAJOR.MINOR.PATCH version, accepting a leading v.
func ParseExact(s string) (*semver.Version, error) {
	return semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(s), "v"))
}

// ParseExactSpecifier parses s and rejects anything but an exact version.
func ParseExactSpecifier(s string) (Specifier, error) {
	v, err := ParseExact(s)
	if err != nil {
		return Specifier{}, &SpecifierError{Specifier: s, Err: errors.New("expected an exact version like 18.16.0")}
	}
	return Specifier{Raw: strings.TrimSpace(s), Exact: v}, nil
}
