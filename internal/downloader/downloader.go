// Package downloader retrieves remote media bytes and writes them to
// disk. Each download is independent and best-effort: a failure leaves
// no file behind and is never retried.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"mediasync/pkg/logger"
)

// DefaultTimeout bounds a single download attempt.
const DefaultTimeout = 15 * time.Second

// HTTP downloads files over plain HTTP GET.
type HTTP struct {
	client    *http.Client
	userAgent string
	logger    logger.Logger
}

// New creates an HTTP downloader. A non-positive timeout falls back
// to DefaultTimeout.
func New(timeout time.Duration, userAgent string, log logger.Logger) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &HTTP{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    log,
	}
}

// Fetch retrieves url and writes the full body to dest. On any
// network, timeout or non-2xx condition it returns an error and
// leaves no file at dest. The write goes through a temp file and a
// rename so a partial body can never be mistaken for a completed
// download.
func (h *HTTP) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tempPath := dest + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write body: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempPath, dest); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	h.logger.DebugWithFields("downloaded file", map[string]interface{}{
		"url":      url,
		"dest":     dest,
		"size":     written,
		"duration": time.Since(start),
	})
	return nil
}
