// Package media prepares downloaded video files for streaming delivery and
// transcription: container normalization, audio stream probing, and
// size-governed audio extraction.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"openhouse.systems/reeldesk/pkg/ffmpeg"
)

// Processor runs the local ffmpeg/ffprobe steps of the pipeline.
type Processor struct {
	probeFn func(ctx context.Context, path string) (*ffmpeg.ProbeResult, error)
	runFn   func(ctx context.Context, input, output string, opts ...ffmpeg.Option) error
}

// NewProcessor returns a Processor backed by the real ffmpeg tools.
func NewProcessor() *Processor {
	return &Processor{
		probeFn: ffmpeg.Probe,
		runFn:   ffmpeg.Run,
	}
}

// Normalize rewrites src into dst as a stream copy with index metadata moved
// to the head of the file, so playback can start before the full download.
// Normalization is an optimization: if the rewrite fails for any reason the
// raw file is renamed into place unchanged.
func (p *Processor) Normalize(ctx context.Context, src, dst string) error {
	if err := p.runFn(ctx, src, dst, ffmpeg.CopyAll); err != nil {
		slog.Warn("media: normalization failed, keeping original container", "src", src, "error", err)
		if renameErr := os.Rename(src, dst); renameErr != nil {
			return fmt.Errorf("media: fallback rename: %w", renameErr)
		}
	}
	return nil
}
