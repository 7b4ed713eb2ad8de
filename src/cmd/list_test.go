package cmd

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/rtvm/rtvm/src/internal/index"
)

func TestRunList(t *testing.T) {
	c := newCLI(t)

	if err := runList(); err == nil {
		t.Error("runList() should fail with nothing installed")
	}

	c.publish("18.0.0", "")
	c.install("18.0.0")

	// Leftovers that must not count as installed versions
	for _, dir := range []string{".install-20.0.0-123", "not-a-version"} {
		if err := os.MkdirAll(filepath.Join(c.root, "node", dir), 0755); err != nil {
			t.Fatal(err)
		}
	}

	if err := runList(); err != nil {
		t.Errorf("runList() error = %v", err)
	}
	if err := runUse("18.0.0"); err != nil {
		t.Fatal(err)
	}
	if err := runList(); err != nil {
		t.Errorf("runList() with active version error = %v", err)
	}
}

func TestRunCurrent(t *testing.T) {
	c := newCLI(t)

	if err := runCurrent(false); err != nil {
		t.Errorf("runCurrent() with nothing active error = %v", err)
	}

	c.publish("18.0.0", "")
	c.install("18.0.0")
	if err := runUse("18.0.0"); err != nil {
		t.Fatal(err)
	}
	if err := runCurrent(true); err != nil {
		t.Errorf("runCurrent(true) error = %v", err)
	}
}

func remoteCatalog() []index.CatalogEntry {
	iron := "Iron"
	hydrogen := "Hydrogen"
	return []index.CatalogEntry{
		{Version: semver.MustParse("18.20.0"), LTS: &hydrogen, Date: "2024-03-26"},
		{Version: semver.MustParse("21.7.0"), Date: "2024-03-06"},
		{Version: semver.MustParse("20.12.0"), LTS: &iron, Date: "2024-03-26"},
		{Version: semver.MustParse("18.1.0"), Date: "2022-05-03"},
	}
}

func versionsOf(entries []index.CatalogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

func TestSelectRemote(t *testing.T) {
	tests := []struct {
		name string
		opts listRemoteOptions
		want []string
	}{
		{
			name: "all newest first",
			opts: listRemoteOptions{},
			want: []string{"21.7.0", "20.12.0", "18.20.0", "18.1.0"},
		},
		{
			name: "lts only",
			opts: listRemoteOptions{ltsOnly: true},
			want: []string{"20.12.0", "18.20.0"},
		},
		{
			name: "range filter",
			opts: listRemoteOptions{filter: "^18"},
			want: []string{"18.20.0", "18.1.0"},
		},
		{
			name: "substring filter",
			opts: listRemoteOptions{filter: "v20.12"},
			want: []string{"20.12.0"},
		},
		{
			name: "limit",
			opts: listRemoteOptions{limit: 2},
			want: []string{"21.7.0", "20.12.0"},
		},
		{
			name: "lts with range",
			opts: listRemoteOptions{ltsOnly: true, filter: ">=19"},
			want: []string{"20.12.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := remoteCatalog()
			got := versionsOf(selectRemote(catalog, tt.opts))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("selectRemote() = %v, want %v", got, tt.want)
			}
			if catalog[0].String() != "18.20.0" {
				t.Error("selectRemote() must not reorder the caller's catalog")
			}
		})
	}
}

func TestRunListRemote(t *testing.T) {
	c := newCLI(t)
	c.publish("18.0.0", "Hydrogen")
	c.mirror.AddRelease("20.0.0", "")

	if err := runListRemote(context.Background(), listRemoteOptions{limit: 10}); err != nil {
		t.Errorf("runListRemote() error = %v", err)
	}
}
