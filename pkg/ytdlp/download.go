package ytdlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DownloadVideo downloads the media for url into destPath as a single mp4.
//
// The file is written to destPath + ".download" first and renamed into place
// only after yt-dlp exits cleanly, so a half-written file can never be
// mistaken for a finished one.
func (c *Client) DownloadVideo(ctx context.Context, url string, destPath string, extraArgs ...string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("ytdlp: url is required")
	}
	if strings.TrimSpace(destPath) == "" {
		return fmt.Errorf("ytdlp: destPath is required")
	}

	tmpPath := destPath + ".download"

	args := []string{
		"-o", tmpPath,
		"--no-playlist",
		"--no-colors",
		"--merge-output-format", "mp4",
		"--format", "bv*+ba/b",
	}
	args = append(args, extraArgs...)
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("ytdlp: move completed download: %w", err)
	}
	return nil
}

// DownloadThumbnail asks yt-dlp to fetch just the thumbnail into destDir,
// converted to jpg, and returns the path of the produced file.
// Not all extractors expose thumbnails; callers may treat failures as best-effort.
func (c *Client) DownloadThumbnail(ctx context.Context, url string, destDir string, extraArgs ...string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("ytdlp: url is required")
	}
	if strings.TrimSpace(destDir) == "" {
		return "", fmt.Errorf("ytdlp: destDir is required")
	}

	tmpl := filepath.Join(destDir, "thumbnail.%(ext)s")

	args := []string{
		"--skip-download",
		"--write-thumbnail",
		"--convert-thumbnails", "jpg",
		"--no-playlist",
		"-o", tmpl,
	}
	args = append(args, extraArgs...)
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return "", wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}

	matches, err := filepath.Glob(filepath.Join(destDir, "thumbnail.*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("ytdlp: no thumbnail produced")
	}
	return matches[0], nil
}
