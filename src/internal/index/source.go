// Package index fetches and parses the remote version catalog published by
// a distribution mirror.
package index

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CatalogFileName is the catalog document served at the mirror root.
const CatalogFileName = "index.json"

// Source retrieves the version catalog from a mirror.
// Implementations include a remote HTTP mirror and a local directory.
type Source interface {
	// Catalog fetches and parses the full catalog. Entry order is unspecified.
	Catalog(ctx context.Context) ([]CatalogEntry, error)
}

// Kind classifies a catalog failure.
type Kind int

const (
	// KindNetwork covers transport failures and non-200 responses.
	KindNetwork Kind = iota
	// KindParse covers malformed documents and entries.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// CatalogError is returned when the catalog cannot be fetched or parsed.
type CatalogError struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *CatalogError) Error() string {
	switch e.Kind {
	case KindParse:
		return fmt.Sprintf("invalid version catalog from %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("failed to fetch version catalog from %s: %v", e.URL, e.Err)
	}
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// IsNetworkError checks if an error is a catalog fetch failure.
func IsNetworkError(err error) bool {
	var target *CatalogError
	return errors.As(err, &target) && target.Kind == KindNetwork
}

// IsParseError checks if an error is a malformed catalog.
func IsParseError(err error) bool {
	var target *CatalogError
	return errors.As(err, &target) && target.Kind == KindParse
}

// NewSource returns the Source for a mirror. A file:// URL or a plain
// filesystem path is read locally; anything else is fetched over HTTP.
func NewSource(mirror string, timeout time.Duration) Source {
	if dir, ok := localDir(mirror); ok {
		return NewFileSource(dir)
	}
	return NewHTTPSource(mirror, timeout)
}

func localDir(mirror string) (string, bool) {
	if strings.HasPrefix(mirror, "file://") {
		u, err := url.Parse(mirror)
		if err == nil {
			return u.Path, true
		}
		return strings.TrimPrefix(mirror, "file://"), true
	}
	if strings.Contains(mirror, "://") {
		return "", false
	}
	return mirror, true
}
