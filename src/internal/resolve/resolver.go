package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rtvm/rtvm/src/internal/index"
	"github.com/rtvm/rtvm/src/internal/platform"
	"github.com/rtvm/rtvm/src/internal/ui"
)

// NoMatchError is returned when a specifier matches no eligible catalog entry.
type NoMatchError struct {
	Specifier string
	// Ineligible lists versions that matched but cannot run on this platform.
	Ineligible []string
}

func (e *NoMatchError) Error() string {
	if len(e.Ineligible) > 0 {
		return fmt.Sprintf("no version matching %q is available for this platform (excluded: %s)",
			e.Specifier, strings.Join(e.Ineligible, ", "))
	}
	return fmt.Sprintf("no version matching %q found", e.Specifier)
}

// IsNoMatch checks if an error is an unresolvable specifier.
func IsNoMatch(err error) bool {
	var target *NoMatchError
	return errors.As(err, &target)
}

// EligibilityError records a catalog version excluded for the platform.
type EligibilityError struct {
	Specifier string
	Version   string
	Platform  platform.Platform
	// Skipped is true when the specifier produced nothing because of the
	// exclusion; false when another version satisfied it instead.
	Skipped bool
}

func (e EligibilityError) Error() string {
	return fmt.Sprintf("version %s is not published for %s (32-bit builds stop before %s)",
		e.Version, e.Platform, platform.X86Cutoff)
}

// Result is the outcome of resolving a batch of specifiers.
type Result struct {
	// Versions holds canonical versions, deduplicated, ascending.
	Versions []string
	Excluded []EligibilityError
}

// Resolver matches specifiers against a catalog for one platform.
type Resolver struct {
	Platform platform.Platform
}

// New creates a resolver for a platform.
func New(p platform.Platform) *Resolver {
	return &Resolver{Platform: p}
}

// Resolve parses every specifier up front, then matches each against the
// eligible part of the catalog. Malformed input aborts the batch with a
// *SpecifierError; unresolvable input yields *NoMatchError values joined
// into one error.
func (r *Resolver) Resolve(specs []string, catalog []index.CatalogEntry) (*Result, error) {
	parsed := make([]Specifier, 0, len(specs))
	for _, s := range specs {
		spec, err := ParseSpecifier(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, spec)
	}

	var eligible, ineligible []*semver.Version
	for _, e := range catalog {
		if r.Platform.Eligible(e.Version) {
			eligible = append(eligible, e.Version)
		} else {
			ineligible = append(ineligible, e.Version)
		}
	}
	ui.Debug("Catalog: %d eligible, %d ineligible for %s", len(eligible), len(ineligible), r.Platform)

	result := &Result{}
	seen := make(map[string]*semver.Version)
	var errs []error

	for _, spec := range parsed {
		if spec.IsExact() {
			r.resolveExact(spec, eligible, ineligible, result, seen, &errs)
		} else {
			r.resolveRange(spec, eligible, ineligible, result, seen, &errs)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	ordered := make([]*semver.Version, 0, len(seen))
	for _, v := range seen {
		ordered = append(ordered, v)
	}
	sort.Sort(semver.Collection(ordered))

	result.Versions = make([]string, len(ordered))
	for i, v := range ordered {
		result.Versions[i] = v.String()
	}
	return result, nil
}

func (r *Resolver) resolveExact(spec Specifier, eligible, ineligible []*semver.Version,
	result *Result, seen map[string]*semver.Version, errs *[]error) {
	for _, v := range eligible {
		if v.Equal(spec.Exact) {
			seen[v.String()] = v
			ui.Debug("Resolved %s to %s", spec, v)
			return
		}
	}
	for _, v := range ineligible {
		if v.Equal(spec.Exact) {
			result.Excluded = append(result.Excluded, EligibilityError{
				Specifier: spec.Raw,
				Version:   v.String(),
				Platform:  r.Platform,
				Skipped:   true,
			})
			return
		}
	}
	*errs = append(*errs, &NoMatchError{Specifier: spec.Raw})
}

func (r *Resolver) resolveRange(spec Specifier, eligible, ineligible []*semver.Version,
	result *Result, seen map[string]*semver.Version, errs *[]error) {
	var best *semver.Version
	for _, v := range eligible {
		if spec.Range.Check(v) && (best == nil || v.GreaterThan(best)) {
			best = v
		}
	}

	var excluded []string
	for _, v := range ineligible {
		if spec.Range.Check(v) {
			excluded = append(excluded, v.String())
		}
	}

	if best == nil {
		*errs = append(*errs, &NoMatchError{Specifier: spec.Raw, Ineligible: excluded})
		return
	}

	for _, v := range excluded {
		result.Excluded = append(result.Excluded, EligibilityError{
			Specifier: spec.Raw,
			Version:   v,
			Platform:  r.Platform,
		})
	}
	seen[best.String()] = best
	ui.Debug("Resolved %s to %s", spec, best)
}
