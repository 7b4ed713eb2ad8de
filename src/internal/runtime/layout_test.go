package runtime

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rtvm/rtvm/src/internal/constants"
	"github.com/rtvm/rtvm/src/internal/platform"
)

func testLayout(t *testing.T) Layout {
	t.Helper()
	root := t.TempDir()
	return Layout{
		Root:     filepath.Join(root, "node"),
		LinkDir:  filepath.Join(root, "bin"),
		Runtime:  &mockRuntime{name: "node", displayName: "Node.js"},
		Platform: platform.New(constants.OSLinux, constants.ArchAMD64),
	}
}

func TestLayout_Paths(t *testing.T) {
	l := testLayout(t)

	if got, want := l.VersionDir("18.16.0"), filepath.Join(l.Root, "18.16.0"); got != want {
		t.Errorf("VersionDir() = %q, want %q", got, want)
	}
	if got, want := l.BinDir("18.16.0"), filepath.Join(l.Root, "18.16.0", "bin"); got != want {
		t.Errorf("BinDir() = %q, want %q", got, want)
	}
	if got, want := l.ExecutablePath("18.16.0"), filepath.Join(l.Root, "18.16.0", "bin", "node"); got != want {
		t.Errorf("ExecutablePath() = %q, want %q", got, want)
	}
	if got, want := l.CurrentPath(), filepath.Join(l.Root, "current"); got != want {
		t.Errorf("CurrentPath() = %q, want %q", got, want)
	}
}

func TestLayout_IsInstalled(t *testing.T) {
	l := testLayout(t)
	if err := os.MkdirAll(l.VersionDir("20.1.0"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(l.Root, "21.0.0"), []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		version string
		want    bool
	}{
		{"20.1.0", true},
		{"20.2.0", false},
		{"21.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := l.IsInstalled(tt.version)
			if err != nil {
				t.Fatalf("IsInstalled() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsInstalled(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestLayout_ListInstalled(t *testing.T) {
	l := testLayout(t)

	for _, dir := range []string{"20.1.0", "8.17.0", "18.16.0", ScratchPrefix + "22.0.0-abc", "not-a-version"} {
		if err := os.MkdirAll(filepath.Join(l.Root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(l.CurrentPath(), []byte("18.16.0"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := l.ListInstalled()
	if err != nil {
		t.Fatalf("ListInstalled() error = %v", err)
	}

	want := []string{"8.17.0", "18.16.0", "20.1.0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListInstalled() = %v, want %v", got, want)
	}
}

func TestLayout_ListInstalled_MissingRoot(t *testing.T) {
	l := testLayout(t)

	got, err := l.ListInstalled()
	if err != nil {
		t.Fatalf("ListInstalled() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListInstalled() = %v, want empty slice", got)
	}
}

func TestInstalledVersion_String(t *testing.T) {
	tests := []struct {
		name     string
		iv       InstalledVersion
		expected string
	}{
		{
			name:     "inactive",
			iv:       InstalledVersion{Version: "18.16.0"},
			expected: "18.16.0",
		},
		{
			name:     "active",
			iv:       InstalledVersion{Version: "20.1.0", Active: true},
			expected: "20.1.0 (active)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.iv.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
