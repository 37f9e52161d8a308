package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"openhouse.systems/reeldesk/pkg/ffmpeg"
)

const (
	// TranscriptionSizeLimit is the transcription service's documented
	// per-request payload ceiling.
	TranscriptionSizeLimit = 25 * 1024 * 1024

	defaultAudioBitrate  = "64k"
	fallbackAudioBitrate = "32k"
	audioSampleRate      = 16000
)

// ExtractAudio pulls a compressed mono audio track out of videoPath into
// workDir and returns its path.
//
// When the video carries no audio stream at all it returns ("", false, nil);
// that is a benign absence, not an error, and the caller should skip
// transcription entirely.
//
// If the first extraction exceeds TranscriptionSizeLimit, exactly one
// re-extraction at a lower bitrate is attempted. A second oversized result is
// still returned; the transcription service is left to reject it.
func (p *Processor) ExtractAudio(ctx context.Context, videoPath, workDir string) (string, bool, error) {
	probe, err := p.probeFn(ctx, videoPath)
	if err != nil {
		return "", false, fmt.Errorf("media: probe: %w", err)
	}
	if !probe.HasAudio() {
		return "", false, nil
	}

	audioPath := filepath.Join(workDir, "audio.mp3")

	size, err := p.extract(ctx, videoPath, audioPath, defaultAudioBitrate)
	if err != nil {
		return "", false, err
	}

	if size > TranscriptionSizeLimit {
		slog.Info("media: audio exceeds transcription ceiling, re-extracting",
			"size", humanize.Bytes(uint64(size)), "bitrate", fallbackAudioBitrate)
		size, err = p.extract(ctx, videoPath, audioPath, fallbackAudioBitrate)
		if err != nil {
			return "", false, err
		}
		if size > TranscriptionSizeLimit {
			slog.Warn("media: audio still exceeds transcription ceiling after bitrate step-down, submitting anyway",
				"size", humanize.Bytes(uint64(size)))
		}
	}

	return audioPath, true, nil
}

func (p *Processor) extract(ctx context.Context, videoPath, audioPath, bitrate string) (int64, error) {
	err := p.runFn(ctx, videoPath, audioPath,
		ffmpeg.NoVideo,
		ffmpeg.AudioCodec("libmp3lame"),
		ffmpeg.AudioBitrate(bitrate),
		ffmpeg.AudioChannels(1),
		ffmpeg.AudioSampleRate(audioSampleRate),
	)
	if err != nil {
		return 0, fmt.Errorf("media: extract audio at %s: %w", bitrate, err)
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return 0, fmt.Errorf("media: stat extracted audio: %w", err)
	}
	return info.Size(), nil
}
