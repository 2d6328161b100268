// Package youtube discovers and downloads YouTube Shorts through the
// yt-dlp command line tool.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mediasync/pkg/logger"
	"mediasync/pkg/models"
)

// ShortMaxDuration is the longest a video may run and still count as
// a Short when its URL does not identify it as one.
const ShortMaxDuration = 60 * time.Second

// downloadFormat prefers an mp4 video+audio pair and falls back to
// the best available single file.
const downloadFormat = "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/b"

type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Client shells out to yt-dlp for search and download. It needs both
// yt-dlp and ffmpeg on the PATH, the latter for merging separate
// video and audio streams.
type Client struct {
	binary string
	run    runner
	logger logger.Logger
}

// NewClient creates a yt-dlp backed client. binary may be empty, in
// which case "yt-dlp" is resolved from the PATH.
func NewClient(binary string, log logger.Logger) *Client {
	if binary == "" {
		binary = "yt-dlp"
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Client{
		binary: binary,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
		logger: log,
	}
}

// Preflight checks that yt-dlp and ffmpeg are installed. Without
// either tool no download in the cycle can succeed, so the
// orchestrator treats this failure as fatal to the run.
func (c *Client) Preflight(ctx context.Context) error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", c.binary, err)
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found on PATH: %w", err)
	}
	return nil
}

// searchEntry is the subset of yt-dlp's JSON dump we consume.
type searchEntry struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	WebpageURL string  `json:"webpage_url"`
	Duration   float64 `json:"duration"`
	ViewCount  int     `json:"view_count"`
	LikeCount  int     `json:"like_count"`
	Channel    string  `json:"channel"`
	Uploader   string  `json:"uploader"`
	Timestamp  int64   `json:"timestamp"`
	UploadDate string  `json:"upload_date"`
}

type searchResult struct {
	Entries []searchEntry `json:"entries"`
}

// FetchRecent searches the channel's recent uploads and returns the
// ones that qualify as Shorts, mapped to the platform-independent
// model.
func (c *Client) FetchRecent(ctx context.Context, account string, limit int) ([]models.MediaItem, error) {
	query := fmt.Sprintf("ytsearch%d:%s shorts", limit, account)
	out, err := c.run(ctx, c.binary, "-J", "--no-warnings", query)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search for %q: %w", account, err)
	}

	var result searchResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output for %q: %w", account, err)
	}

	items := make([]models.MediaItem, 0, len(result.Entries))
	for _, entry := range result.Entries {
		if !IsShort(entry.WebpageURL, time.Duration(entry.Duration*float64(time.Second))) {
			continue
		}
		items = append(items, mapEntry(entry, account))
	}

	c.logger.DebugWithFields("searched channel", map[string]interface{}{
		"account": account,
		"found":   len(result.Entries),
		"shorts":  len(items),
	})
	return items, nil
}

// Fetch downloads the video at url to dest, merging streams into a
// single mp4.
func (c *Client) Fetch(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	_, err := c.run(ctx, c.binary,
		"-f", downloadFormat,
		"--merge-output-format", "mp4",
		"--no-warnings",
		"-o", dest,
		url,
	)
	if err != nil {
		return fmt.Errorf("yt-dlp download %s: %w", url, err)
	}
	return nil
}

// IsShort reports whether a video is a Short. A video qualifies when
// its URL carries the shorts path segment or its duration is at most
// sixty seconds. Search results sometimes omit the duration entirely;
// the missing value reads as zero and qualifies.
func IsShort(url string, duration time.Duration) bool {
	if strings.Contains(url, "shorts") {
		return true
	}
	return duration <= ShortMaxDuration
}

func mapEntry(entry searchEntry, account string) models.MediaItem {
	channel := entry.Channel
	if channel == "" {
		channel = entry.Uploader
	}
	if channel == "" {
		channel = account
	}

	takenAt := ""
	switch {
	case entry.Timestamp > 0:
		takenAt = time.Unix(entry.Timestamp, 0).UTC().Format(time.RFC3339)
	case entry.UploadDate != "":
		if t, err := time.Parse("20060102", entry.UploadDate); err == nil {
			takenAt = t.UTC().Format(time.RFC3339)
		}
	}

	return models.MediaItem{
		ID:       entry.ID,
		Kind:     models.KindVideo,
		TakenAt:  takenAt,
		Caption:  entry.Title,
		Likes:    entry.LikeCount,
		Comments: entry.ViewCount,
		Username: channel,
		VideoURL: entry.WebpageURL,
	}
}
