// Package storage pushes local media files to the CDN-backed object store
// and hands back publicly resolvable URLs.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/dustin/go-humanize"
	storage_go "github.com/supabase-community/storage-go"
)

// Uploader stores media bytes in one bucket under deterministic paths.
type Uploader struct {
	client *storage_go.Client
	bucket string
}

// NewUploader builds an Uploader for the given storage endpoint and bucket.
func NewUploader(storageURL, serviceKey, bucket string) *Uploader {
	return &Uploader{
		client: storage_go.NewClient(storageURL, serviceKey, nil),
		bucket: bucket,
	}
}

// Upload stores the file at localPath as <folder>/<filename> and returns its
// public URL. Upload failures are hard errors: downstream persistence depends
// on the returned URL, so a failed upload must abort the item's media stage.
func (u *Uploader) Upload(ctx context.Context, localPath, folder, filename string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("storage: open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("storage: stat %s: %w", localPath, err)
	}

	objectPath := path.Join(folder, filename)
	contentType := contentTypeFor(filename)
	upsert := true

	_, err = u.client.UploadFile(u.bucket, objectPath, f, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload %s: %w", objectPath, err)
	}

	publicURL := u.client.GetPublicUrl(u.bucket, objectPath).SignedURL

	slog.Info("storage: uploaded object",
		"path", objectPath, "size", humanize.Bytes(uint64(info.Size())), "url", publicURL)

	return publicURL, nil
}

func contentTypeFor(filename string) string {
	switch path.Ext(filename) {
	case ".mp4":
		return "video/mp4"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
