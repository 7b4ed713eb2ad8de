package download

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ChecksumFileName is the per-release checksum list published by the mirror.
const ChecksumFileName = "SHASUMS256.txt"

// ErrChecksumMismatch is returned when the downloaded file's checksum doesn't match.
type ErrChecksumMismatch struct {
	Expected string
	Actual   string
}

func (e *ErrChecksumMismatch) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// ErrChecksumNotListed is returned when the checksum list has no entry for a file.
type ErrChecksumNotListed struct {
	File string
}

func (e *ErrChecksumNotListed) Error() string {
	return fmt.Sprintf("no checksum listed for %s", e.File)
}

// ParseChecksums reads "<sha256>  <file>" lines into a file-to-hash map.
// Blank and malformed lines are ignored.
func ParseChecksums(data []byte) map[string]string {
	sums := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		sum := strings.ToLower(fields[0])
		if len(sum) != sha256.Size*2 {
			continue
		}
		name := strings.TrimPrefix(fields[1], "*")
		sums[name] = sum
	}
	return sums
}

// LookupChecksum finds the hash for file in a checksum list.
func LookupChecksum(data []byte, file string) (string, error) {
	sum, ok := ParseChecksums(data)[file]
	if !ok {
		return "", &ErrChecksumNotListed{File: file}
	}
	return sum, nil
}

// VerifyFile checks if an existing file matches the expected SHA256 checksum.
func VerifyFile(filePath, expectedSHA256 string) error {
	actualSHA256, err := ComputeSHA256(filePath)
	if err != nil {
		return err
	}

	// Normalize both checksums to lowercase for comparison
	expectedNorm := strings.ToLower(strings.TrimSpace(expectedSHA256))
	actualNorm := strings.ToLower(actualSHA256)

	if actualNorm != expectedNorm {
		return &ErrChecksumMismatch{
			Expected: expectedSHA256,
			Actual:   actualSHA256,
		}
	}

	return nil
}

// ComputeSHA256 computes the SHA256 checksum of a file.
func ComputeSHA256(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
