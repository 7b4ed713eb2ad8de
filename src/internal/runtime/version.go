package runtime

import "fmt"

// InstalledVersion is a version directory present in a runtime's storage root
type InstalledVersion struct {
	Version string
	Path    string
	Active  bool
}

// String returns a formatted string representation
func (iv InstalledVersion) String() string {
	marker := ""
	if iv.Active {
		marker = " (active)"
	}
	return fmt.Sprintf("%s%s", iv.Version, marker)
}
