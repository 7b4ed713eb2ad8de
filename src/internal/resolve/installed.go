package resolve

import (
	"github.com/Masterminds/semver/v3"
)

// ResolveInstalled picks the installed version a specifier refers to: the
// version itself when exact, or the highest installed match of a range.
func ResolveInstalled(spec string, installed []string) (string, error) {
	parsed, err := ParseSpecifier(spec)
	if err != nil {
		return "", err
	}

	var best *semver.Version
	for _, raw := range installed {
		v, err := ParseExact(raw)
		if err != nil {
			continue
		}
		switch {
		case parsed.IsExact():
			if v.Equal(parsed.Exact) {
				return v.String(), nil
			}
		case parsed.Range.Check(v) && (best == nil || v.GreaterThan(best)):
			best = v
		}
	}

	if best == nil {
		return "", &NoMatchError{Specifier: parsed.Raw}
	}
	return best.String(), nil
}
