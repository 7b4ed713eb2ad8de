package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// Release describes a version published by a Mirror
type Release struct {
	Version string
	LTS     string
	Files   []string
	Date    string
}

// Mirror is an httptest server laid out like the upstream distribution
// mirror: <url>/index.json plus <url>/v<version>/<artifact> and
// <url>/v<version>/SHASUMS256.txt
type Mirror struct {
	URL string
	Dir string

	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	releases []Release
	hits     map[string]int
	failing  map[string]int
}

// NewMirror starts a fake mirror that is shut down when the test ends
func NewMirror(t *testing.T) *Mirror {
	t.Helper()

	m := &Mirror{
		Dir:     t.TempDir(),
		t:       t,
		hits:    make(map[string]int),
		failing: make(map[string]int),
	}
	m.writeIndex()

	files := http.FileServer(http.Dir(m.Dir))
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.hits[r.URL.Path]++
		status := m.failing[r.URL.Path]
		m.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		files.ServeHTTP(w, r)
	}))
	t.Cleanup(m.server.Close)

	m.URL = m.server.URL
	return m
}

// AddRelease lists a version in index.json without publishing artifacts
func (m *Mirror) AddRelease(version, lts string) {
	m.t.Helper()

	m.mu.Lock()
	m.releases = append(m.releases, Release{Version: version, LTS: lts, Date: "2024-01-01"})
	m.mu.Unlock()
	m.writeIndex()
}

// Publish writes an archive for version under v<version>/<artifact> and
// records its checksum. The archive unpacks into topLevel/.
func (m *Mirror) Publish(version, artifact, topLevel string, files []Entry) {
	m.t.Helper()

	entries := make([]Entry, 0, len(files)+1)
	entries = append(entries, Entry{Name: topLevel, Dir: true})
	for _, f := range files {
		f.Name = topLevel + "/" + f.Name
		entries = append(entries, f)
	}

	path := filepath.Join(m.Dir, "v"+version, artifact)
	WriteArchive(m.t, path, entries)
	m.AddChecksum(version, artifact, fileSHA256(m.t, path))
}

// AddChecksum appends a line to v<version>/SHASUMS256.txt
func (m *Mirror) AddChecksum(version, artifact, sum string) {
	m.t.Helper()

	path := filepath.Join(m.Dir, "v"+version, "SHASUMS256.txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		m.t.Fatalf("testutil: %v", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := fmt.Fprintf(f, "%s  %s\n", sum, artifact); err != nil {
		m.t.Fatalf("testutil: %v", err)
	}
}

// Fail makes every request for urlPath answer with status
func (m *Mirror) Fail(urlPath string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[urlPath] = status
}

// Hits returns how many requests were made for urlPath
func (m *Mirror) Hits(urlPath string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[urlPath]
}

// TotalHits returns the number of requests served, catalog included
func (m *Mirror) TotalHits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.hits {
		total += n
	}
	return total
}

// ArtifactHits returns the number of requests outside the catalog
func (m *Mirror) ArtifactHits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for p, n := range m.hits {
		if !strings.HasSuffix(p, "/index.json") {
			total += n
		}
	}
	return total
}

func (m *Mirror) writeIndex() {
	m.mu.Lock()
	type entry struct {
		Version string      `json:"version"`
		Date    string      `json:"date"`
		Files   []string    `json:"files"`
		LTS     interface{} `json:"lts"`
	}
	doc := make([]entry, 0, len(m.releases))
	for _, r := range m.releases {
		var lts interface{} = false
		if r.LTS != "" {
			lts = r.LTS
		}
		files := r.Files
		if files == nil {
			files = []string{}
		}
		doc = append(doc, entry{Version: "v" + r.Version, Date: r.Date, Files: files, LTS: lts})
	}
	m.mu.Unlock()

	data, err := json.Marshal(doc)
	if err != nil {
		m.t.Fatalf("testutil: %v", err)
	}
	if err := os.WriteFile(filepath.Join(m.Dir, "index.json"), data, 0644); err != nil {
		m.t.Fatalf("testutil: %v", err)
	}
}

func fileSHA256(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("testutil: %v", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NodeFiles returns a minimal POSIX release tree: bin/node, bin/npm as a
// symlink into lib/, and bin/npx
func NodeFiles(version string) []Entry {
	return []Entry{
		{Name: "bin", Dir: true},
		{Name: "bin/node", Body: "#!/bin/sh\necho v" + version + "\n", Mode: 0755},
		{Name: "bin/npx", Body: "#!/bin/sh\necho npx\n", Mode: 0755},
		{Name: "lib/node_modules/npm/bin/npm-cli.js", Body: "// npm " + version + "\n", Mode: 0755},
		{Name: "bin/npm", Linkname: "../lib/node_modules/npm/bin/npm-cli.js"},
	}
}

// NodeWindowsFiles returns a minimal Windows release tree with node.exe at the root
func NodeWindowsFiles(version string) []Entry {
	return []Entry{
		{Name: "node.exe", Body: "MZ node " + version, Mode: 0755},
		{Name: "npm.cmd", Body: "@echo npm", Mode: 0644},
	}
}
