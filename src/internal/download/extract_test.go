package download

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rtvm/rtvm/src/internal/testutil"
)

var sampleTree = []testutil.Entry{
	{Name: "node-v18.16.0-linux-x64", Dir: true},
	{Name: "node-v18.16.0-linux-x64/bin/node", Body: "#!/bin/sh\n", Mode: 0755},
	{Name: "node-v18.16.0-linux-x64/lib/node_modules/npm/bin/npm-cli.js", Body: "// npm\n"},
	{Name: "node-v18.16.0-linux-x64/bin/npm", Linkname: "../lib/node_modules/npm/bin/npm-cli.js"},
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		archive  string
		symlinks bool
	}{
		{name: "tar.xz", archive: "release.tar.xz", symlinks: true},
		{name: "tar.gz", archive: "release.tar.gz", symlinks: true},
		{name: "zip", archive: "release.zip", symlinks: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.symlinks && runtime.GOOS == "windows" {
				t.Skip("symlink extraction needs privileges on Windows")
			}

			dir := t.TempDir()
			archive := filepath.Join(dir, tt.archive)
			testutil.WriteArchive(t, archive, sampleTree)

			dest := filepath.Join(dir, "extract")
			if err := Extract(archive, dest); err != nil {
				t.Fatalf("Extract() error = %v", err)
			}

			top, err := SingleTopLevelDir(dest)
			if err != nil {
				t.Fatalf("SingleTopLevelDir() error = %v", err)
			}
			if filepath.Base(top) != "node-v18.16.0-linux-x64" {
				t.Errorf("top-level dir = %q", top)
			}

			node := filepath.Join(top, "bin", "node")
			info, err := os.Stat(node)
			if err != nil {
				t.Fatalf("bin/node missing: %v", err)
			}
			if runtime.GOOS != "windows" && info.Mode().Perm()&0100 == 0 {
				t.Errorf("bin/node mode = %v, want executable", info.Mode())
			}

			if tt.symlinks {
				target, err := os.Readlink(filepath.Join(top, "bin", "npm"))
				if err != nil {
					t.Fatalf("bin/npm is not a symlink: %v", err)
				}
				if target != "../lib/node_modules/npm/bin/npm-cli.js" {
					t.Errorf("bin/npm -> %q", target)
				}
				if _, err := os.Stat(filepath.Join(top, "bin", "npm")); err != nil {
					t.Errorf("bin/npm does not resolve: %v", err)
				}
			}
		})
	}
}

func TestExtract_Unsupported(t *testing.T) {
	err := Extract(filepath.Join(t.TempDir(), "release.rar"), t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unsupported archive format") {
		t.Errorf("Extract() error = %v, want unsupported format", err)
	}
}

func TestExtract_Corrupt(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bad.tar.xz", "bad.tar.gz", "bad.zip", "bad.7z"} {
		t.Run(name, func(t *testing.T) {
			archive := filepath.Join(dir, name)
			if err := os.WriteFile(archive, []byte("definitely not an archive"), 0644); err != nil {
				t.Fatal(err)
			}
			if err := Extract(archive, filepath.Join(dir, "out-"+name)); err == nil {
				t.Error("expected error for corrupt archive")
			}
		})
	}
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.gz")
	testutil.WriteTarGz(t, archive, []testutil.Entry{
		{Name: "../escape.txt", Body: "gotcha"},
	})

	err := Extract(archive, filepath.Join(dir, "extract"))
	if err == nil || !strings.Contains(err.Error(), "illegal file path") {
		t.Errorf("Extract() error = %v, want illegal file path", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(statErr) {
		t.Error("file escaped the destination directory")
	}
}

func TestExtract_RejectsEscapingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink extraction needs privileges on Windows")
	}

	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.xz")
	testutil.WriteTarXz(t, archive, []testutil.Entry{
		{Name: "top/link", Linkname: "../../../etc/passwd"},
	})

	err := Extract(archive, filepath.Join(dir, "extract"))
	if err == nil || !strings.Contains(err.Error(), "illegal symlink target") {
		t.Errorf("Extract() error = %v, want illegal symlink target", err)
	}
}

func TestSingleTopLevelDir(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := SingleTopLevelDir(t.TempDir()); err == nil {
			t.Error("expected error for empty directory")
		}
	})

	t.Run("several entries", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"a", "b"} {
			if err := os.Mkdir(filepath.Join(dir, name), 0755); err != nil {
				t.Fatal(err)
			}
		}
		_, err := SingleTopLevelDir(dir)
		if err == nil || !strings.Contains(err.Error(), "found 2 entries") {
			t.Errorf("SingleTopLevelDir() error = %v", err)
		}
	})

	t.Run("single file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "node"), nil, 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := SingleTopLevelDir(dir); err == nil {
			t.Error("expected error when the only entry is a file")
		}
	})
}
