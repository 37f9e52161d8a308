package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownloadVideo_RenamesCompletedFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "video.mp4")

	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		// Simulate yt-dlp writing the temporary download file.
		require.Contains(t, args, dest+".download")
		require.Contains(t, args, "--format")
		require.Contains(t, args, "bv*+ba/b")
		return nil, nil, os.WriteFile(dest+".download", []byte("video-bytes"), 0o644)
	}

	err := c.DownloadVideo(context.Background(), "https://example.com/reel/abc", dest)
	require.NoError(t, err)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "video-bytes", string(b))

	_, err = os.Stat(dest + ".download")
	require.True(t, os.IsNotExist(err), "temporary file should be gone")
}

func TestDownloadVideo_FailureLeavesNoFinalFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "video.mp4")

	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return nil, []byte("403 forbidden"), errors.New("exit status 1")
	}

	err := c.DownloadVideo(context.Background(), "https://example.com/reel/abc", dest)
	require.Error(t, err)

	var ee *ExecError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "403 forbidden", ee.Stderr)

	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr))
}

func TestDownloadThumbnail_ReturnsProducedPath(t *testing.T) {
	dir := t.TempDir()

	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return nil, nil, os.WriteFile(filepath.Join(dir, "thumbnail.jpg"), []byte("jpg"), 0o644)
	}

	path, err := c.DownloadThumbnail(context.Background(), "https://example.com/reel/abc", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "thumbnail.jpg"), path)
}

func TestDownloadThumbnail_NoFileIsError(t *testing.T) {
	dir := t.TempDir()

	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return nil, nil, nil
	}

	_, err := c.DownloadThumbnail(context.Background(), "https://example.com/reel/abc", dir)
	require.Error(t, err)
}

func TestDownloadVideo_RequiresArgs(t *testing.T) {
	c := New()
	require.Error(t, c.DownloadVideo(context.Background(), "", "dest.mp4"))
	require.Error(t, c.DownloadVideo(context.Background(), "https://example.com", ""))
}
