package index

import (
	"context"
	"os"
	"path/filepath"
)

// FileSource reads the catalog from a mirror laid out on the local filesystem.
type FileSource struct {
	dir string
}

// NewFileSource creates a Source that reads <dir>/index.json.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Catalog reads and parses the catalog file.
func (s *FileSource) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	path := filepath.Join(s.dir, CatalogFileName)

	if err := ctx.Err(); err != nil {
		return nil, &CatalogError{Kind: KindNetwork, URL: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Kind: KindNetwork, URL: path, Err: err}
	}

	entries, err := ParseCatalog(data)
	if err != nil {
		return nil, &CatalogError{Kind: KindParse, URL: path, Err: err}
	}
	return entries, nil
}
