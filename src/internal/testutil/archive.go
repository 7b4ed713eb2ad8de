package testutil

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

// Entry is a file, directory or symlink placed in a generated archive
type Entry struct {
	Name     string
	Body     string
	Mode     int64
	Dir      bool
	Linkname string
}

// WriteArchive writes entries to path, choosing the format from its suffix
// (.tar.xz, .tar.gz or .zip)
func WriteArchive(t *testing.T, path string, entries []Entry) {
	t.Helper()

	switch {
	case strings.HasSuffix(path, ".tar.xz"):
		WriteTarXz(t, path, entries)
	case strings.HasSuffix(path, ".tar.gz"):
		WriteTarGz(t, path, entries)
	case strings.HasSuffix(path, ".zip"):
		WriteZip(t, path, entries)
	default:
		t.Fatalf("testutil: cannot generate archive %s", path)
	}
}

// WriteTarXz writes a tar.xz archive
func WriteTarXz(t *testing.T, path string, entries []Entry) {
	t.Helper()
	withFile(t, path, func(f io.Writer) error {
		xw, err := xz.NewWriter(f)
		if err != nil {
			return err
		}
		if err := writeTar(xw, entries); err != nil {
			return err
		}
		return xw.Close()
	})
}

// WriteTarGz writes a tar.gz archive
func WriteTarGz(t *testing.T, path string, entries []Entry) {
	t.Helper()
	withFile(t, path, func(f io.Writer) error {
		gw := gzip.NewWriter(f)
		if err := writeTar(gw, entries); err != nil {
			return err
		}
		return gw.Close()
	})
}

// WriteZip writes a zip archive; symlink entries are skipped
func WriteZip(t *testing.T, path string, entries []Entry) {
	t.Helper()
	withFile(t, path, func(f io.Writer) error {
		zw := zip.NewWriter(f)
		for _, e := range entries {
			if e.Linkname != "" {
				continue
			}
			name := e.Name
			if e.Dir && !strings.HasSuffix(name, "/") {
				name += "/"
			}
			hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
			hdr.SetMode(os.FileMode(mode(e)))
			w, err := zw.CreateHeader(hdr)
			if err != nil {
				return err
			}
			if !e.Dir {
				if _, err := io.WriteString(w, e.Body); err != nil {
					return err
				}
			}
		}
		return zw.Close()
	})
}

func writeTar(w io.Writer, entries []Entry) error {
	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: mode(e)}
		switch {
		case e.Dir:
			hdr.Typeflag = tar.TypeDir
			if !strings.HasSuffix(hdr.Name, "/") {
				hdr.Name += "/"
			}
		case e.Linkname != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Linkname
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := io.WriteString(tw, e.Body); err != nil {
				return err
			}
		}
	}
	return tw.Close()
}

func mode(e Entry) int64 {
	if e.Mode != 0 {
		return e.Mode
	}
	if e.Dir {
		return 0755
	}
	return 0644
}

func withFile(t *testing.T, path string, write func(io.Writer) error) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("testutil: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("testutil: %v", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		t.Fatalf("testutil: writing %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("testutil: %v", err)
	}
}
