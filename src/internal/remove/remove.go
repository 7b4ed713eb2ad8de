// Package remove deletes installed versions, clearing the active-version
// state first when the active version is among them.
package remove

import (
	"fmt"
	"os"

	"github.com/rtvm/rtvm/src/internal/activate"
	"github.com/rtvm/rtvm/src/internal/resolve"
	"github.com/rtvm/rtvm/src/internal/runtime"
	"github.com/rtvm/rtvm/src/internal/ui"
)

// Status is the outcome of removing one version
type Status int

const (
	// Removed means the version directory is gone
	Removed Status = iota
	// NotInstalled means there was nothing to remove
	NotInstalled
	// Failed means deactivation or deletion failed; Err says which
	Failed
)

func (s Status) String() string {
	switch s {
	case Removed:
		return "removed"
	case NotInstalled:
		return "not installed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports what happened to one version
type Result struct {
	Version string
	Status  Status
	// WasActive is true when the version was active and got deactivated
	WasActive bool
	Err       error
}

// Remover deletes versions from a storage root
type Remover struct {
	Layout    runtime.Layout
	Activator activate.Activator
}

// New creates a Remover
func New(layout runtime.Layout, activator activate.Activator) *Remover {
	return &Remover{Layout: layout, Activator: activator}
}

// RemoveAll validates every specifier as an exact version and reads the
// active version before touching anything, then removes each version in
// input order. A problem with one version is recorded in its Result and does
// not stop the others.
func (r *Remover) RemoveAll(specs []string) ([]Result, error) {
	versions := make([]string, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		spec, err := resolve.ParseExactSpecifier(s)
		if err != nil {
			return nil, err
		}
		v := spec.Exact.String()
		if seen[v] {
			continue
		}
		seen[v] = true
		versions = append(versions, v)
	}

	active, hasActive, err := r.Activator.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to read the active version: %w", err)
	}

	results := make([]Result, 0, len(versions))
	for _, v := range versions {
		results = append(results, r.removeOne(v, hasActive && active == v))
	}
	return results, nil
}

func (r *Remover) removeOne(version string, isActive bool) Result {
	result := Result{Version: version}

	installed, err := r.Layout.IsInstalled(version)
	if err != nil {
		result.Status = Failed
		result.Err = err
		return result
	}
	if !installed {
		result.Status = NotInstalled
		result.Err = &activate.NotInstalledError{Version: version}
		return result
	}

	if isActive {
		if err := r.Activator.Deactivate(version); err != nil {
			// Keep the directory so the remaining links do not dangle
			result.Status = Failed
			result.Err = fmt.Errorf("failed to deactivate %s: %w", version, err)
			return result
		}
		result.WasActive = true
		ui.Debug("Deactivated %s before removal", version)
	}

	dir := r.Layout.VersionDir(version)
	if err := os.RemoveAll(dir); err != nil {
		result.Status = Failed
		result.Err = fmt.Errorf("failed to delete %s: %w", dir, err)
		return result
	}

	ui.Debug("Removed %s", dir)
	result.Status = Removed
	return result
}
