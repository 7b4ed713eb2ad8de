package download

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/rtvm/rtvm/src/internal/ui"
	"github.com/ulikunitz/xz"
)

// Extract unpacks an archive into destDir, picking the format from the
// file name suffix (.tar.xz, .tar.gz/.tgz, .zip, .7z)
func Extract(archivePath, destDir string) error {
	name := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(name, ".tar.xz"):
		return ExtractTarXz(archivePath, destDir)
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return ExtractTarGz(archivePath, destDir)
	case strings.HasSuffix(name, ".zip"):
		return ExtractZip(archivePath, destDir)
	case strings.HasSuffix(name, ".7z"):
		return Extract7z(archivePath, destDir)
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
}

// safeJoin joins name under destDir, rejecting entries that escape it (ZipSlip)
func safeJoin(destDir, name string) (string, error) {
	destPath := filepath.Join(destDir, name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	return destPath, nil
}

func writeFile(destPath string, src io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(destFile, src); err != nil {
		_ = destFile.Close()
		return err
	}
	return destFile.Close()
}

// ExtractZip extracts a zip archive to a destination directory
func ExtractZip(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	for _, file := range reader.File {
		if err := extractZipFile(file, destDir); err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}

	return nil
}

func extractZipFile(file *zip.File, destDir string) error {
	destPath, err := safeJoin(destDir, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, 0755)
	}

	srcFile, err := file.Open()
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	return writeFile(destPath, srcFile, fileMode(file.Mode()))
}

// Extract7z extracts a 7-Zip archive to a destination directory
func Extract7z(archivePath, destDir string) error {
	reader, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	for _, file := range reader.File {
		if err := extract7zFile(file, destDir); err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}

	return nil
}

func extract7zFile(file *sevenzip.File, destDir string) error {
	destPath, err := safeJoin(destDir, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, 0755)
	}

	srcFile, err := file.Open()
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	return writeFile(destPath, srcFile, fileMode(file.Mode()))
}

// ExtractTarGz extracts a tar.gz archive to a destination directory
func ExtractTarGz(tarGzPath, destDir string) error {
	file, err := os.Open(tarGzPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer func() { _ = gzReader.Close() }()

	return extractTar(gzReader, destDir)
}

// ExtractTarXz extracts a tar.xz archive to a destination directory
func ExtractTarXz(tarXzPath, destDir string) error {
	file, err := os.Open(tarXzPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	xzReader, err := xz.NewReader(file)
	if err != nil {
		return err
	}

	return extractTar(xzReader, destDir)
}

func extractTar(r io.Reader, destDir string) error {
	tarReader := tar.NewReader(r)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	count := 0
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if err := extractTarFile(header, tarReader, destDir); err != nil {
			return fmt.Errorf("failed to extract %s: %w", header.Name, err)
		}
		count++
	}

	ui.Debug("Extracted %d entries into %s", count, destDir)
	return nil
}

func extractTarFile(header *tar.Header, reader io.Reader, destDir string) error {
	destPath, err := safeJoin(destDir, header.Name)
	if err != nil {
		return err
	}

	switch header.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(destPath, 0755)

	case tar.TypeReg:
		return writeFile(destPath, reader, fileMode(os.FileMode(header.Mode)))

	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}
		// Relative targets resolve from the link's directory and must stay inside destDir
		target := header.Linkname
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(destPath), target)
		}
		if _, err := safeJoin(destDir, mustRel(destDir, target)); err != nil {
			return fmt.Errorf("illegal symlink target: %s", header.Linkname)
		}
		_ = os.Remove(destPath)
		return os.Symlink(header.Linkname, destPath)

	case tar.TypeLink:
		source, err := safeJoin(destDir, header.Linkname)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}
		_ = os.Remove(destPath)
		return os.Link(source, destPath)

	default:
		// Skip other types
		return nil
	}
}

func mustRel(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return ".."
	}
	return rel
}

// fileMode keeps permission bits, defaulting to 0644 when an archive
// records none
func fileMode(mode os.FileMode) os.FileMode {
	perm := mode.Perm()
	if perm == 0 {
		return 0644
	}
	return perm
}

// SingleTopLevelDir returns the path of the only directory inside dir.
// Release archives unpack into one versioned directory (e.g. node-v18.16.0-linux-x64/).
func SingleTopLevelDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	if len(entries) != 1 || !entries[0].IsDir() {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		return "", fmt.Errorf("expected a single top-level directory, found %d entries [%s]",
			len(entries), strings.Join(names, ", "))
	}

	return filepath.Join(dir, entries[0].Name()), nil
}
