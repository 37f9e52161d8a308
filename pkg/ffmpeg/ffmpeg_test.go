package ffmpeg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandBuild(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		output   string
		opts     []Option
		wantArgs []string
	}{
		{
			name:   "stream copy with faststart",
			input:  "input.mkv",
			output: "output.mp4",
			opts:   []Option{CopyAll},
			wantArgs: []string{
				"-hide_banner", "-y",
				"-i", "input.mkv",
				"-c", "copy",
				"-movflags", "+faststart",
				"output.mp4",
			},
		},
		{
			name:   "no faststart for non-mp4 output",
			input:  "input.mp4",
			output: "audio.mp3",
			opts: []Option{
				NoVideo,
				AudioCodec("libmp3lame"),
				AudioBitrate("64k"),
				AudioChannels(1),
				AudioSampleRate(16000),
			},
			wantArgs: []string{
				"-hide_banner", "-y",
				"-i", "input.mp4",
				"-vn",
				"-c:a", "libmp3lame",
				"-b:a", "64k",
				"-ac", "1",
				"-ar", "16000",
				"audio.mp3",
			},
		},
		{
			name:   "loglevel goes before input",
			input:  "input.mp4",
			output: "output.mp4",
			opts: []Option{
				LogLevel("error"),
				CopyAll,
			},
			wantArgs: []string{
				"-hide_banner", "-y",
				"-loglevel", "error",
				"-i", "input.mp4",
				"-c", "copy",
				"-movflags", "+faststart",
				"output.mp4",
			},
		},
		{
			name:   "extra args escape hatch",
			input:  "input.mp4",
			output: "output.m4a",
			opts: []Option{
				NoVideo,
				ExtraArgs("-map_metadata", "-1"),
			},
			wantArgs: []string{
				"-hide_banner", "-y",
				"-i", "input.mp4",
				"-vn",
				"-map_metadata", "-1",
				"-movflags", "+faststart",
				"output.m4a",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCommand(tt.input, tt.output, tt.opts...)
			require.Equal(t, tt.wantArgs, cmd.Build())
		})
	}
}

func TestError_MessageUsesStderrTail(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &Error{
		Args:   []string{"-i", "in.mp4", "out.mp4"},
		Stderr: "line1\nline2\nline3\nline4\nline5",
		Err:    cause,
	}
	msg := err.Error()
	require.Contains(t, msg, "line3")
	require.Contains(t, msg, "line5")
	require.NotContains(t, msg, "line1")
	require.Equal(t, "line1\nline2\nline3\nline4\nline5", err.FullStderr())
	require.Equal(t, "ffmpeg -i in.mp4 out.mp4", err.Command())
	require.ErrorIs(t, err, cause)
}

func TestParseProbeOutput(t *testing.T) {
	raw := []byte(`{
		"format": {"format_name": "mov,mp4,m4a", "duration": "12.5", "size": "1048576", "bit_rate": "670000"},
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1080, "height": 1920},
			{"index": 1, "codec_type": "audio", "codec_name": "aac", "channels": 2, "sample_rate": "44100"}
		]
	}`)

	result, err := parseProbeOutput(raw)
	require.NoError(t, err)
	require.Equal(t, 12.5, result.Duration)
	require.Equal(t, int64(1048576), result.Size)
	require.Equal(t, "h264", result.VideoCodec)
	require.Equal(t, 1080, result.Width)
	require.Equal(t, "aac", result.AudioCodec)
	require.Equal(t, 2, result.AudioChannels)
	require.Equal(t, 44100, result.AudioSampleRate)
	require.Equal(t, 1, result.AudioStreams)
	require.True(t, result.HasAudio())
}

func TestParseProbeOutput_NoAudio(t *testing.T) {
	raw := []byte(`{
		"format": {"format_name": "mp4", "duration": "8.0"},
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 720, "height": 1280}
		]
	}`)

	result, err := parseProbeOutput(raw)
	require.NoError(t, err)
	require.Equal(t, 0, result.AudioStreams)
	require.False(t, result.HasAudio())
}

func TestParseProbeOutput_InvalidJSON(t *testing.T) {
	_, err := parseProbeOutput([]byte("not json"))
	require.Error(t, err)
}
