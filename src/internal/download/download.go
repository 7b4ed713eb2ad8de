// Package download provides utilities for downloading, verifying and
// extracting release archives
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rtvm/rtvm/src/internal/ui"
)

// ProgressFunc receives bytes written so far and the expected total
// (-1 when the server sends no Content-Length)
type ProgressFunc func(current, total int64)

// Downloader performs HTTP transfers with a shared client
type Downloader struct {
	client *http.Client
}

// New creates a Downloader whose requests are bounded by timeout
func New(timeout time.Duration) *Downloader {
	return NewWithClient(&http.Client{Timeout: timeout})
}

// NewWithClient creates a Downloader with a custom HTTP client
func NewWithClient(client *http.Client) *Downloader {
	return &Downloader{client: client}
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	ui.Debug("Making HTTP GET request: %s", url)
	resp, err := d.client.Do(req)
	if err != nil {
		ui.Debug("HTTP request failed: %v", err)
		return nil, fmt.Errorf("failed to connect: %w (URL: %s)", err, url)
	}

	ui.Debug("HTTP response: %s", resp.Status)
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download failed (HTTP %s): %s", resp.Status, url)
	}
	return resp, nil
}

// File downloads url to destPath, reporting progress as bytes arrive.
// A partial file is removed on failure.
func (d *Downloader) File(ctx context.Context, url, destPath string, progress ProgressFunc) error {
	ui.Debug("Starting download: %s", url)
	ui.Debug("Destination: %s", destPath)

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}

	resp, err := d.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}

	reader := &progressReader{
		reader:   resp.Body,
		progress: progress,
		total:    resp.ContentLength,
	}

	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		ui.Debug("Download failed: %v", err)
		return fmt.Errorf("download interrupted: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(destPath)
		return err
	}

	ui.Debug("Download complete: %s (%d bytes)", destPath, reader.current)
	return nil
}

// Fetch returns the body of a small document such as a checksum list
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return data, nil
}

// progressReader wraps an io.Reader and reports progress
type progressReader struct {
	reader   io.Reader
	progress ProgressFunc
	current  int64
	total    int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)

	if pr.progress != nil && n > 0 {
		pr.progress(pr.current, pr.total)
	}

	return n, err
}
