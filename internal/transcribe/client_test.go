package transcribe

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

type fakeAudioAPI struct {
	gotRequest openai.AudioRequest
	text       string
	err        error
}

func (f *fakeAudioAPI) CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error) {
	f.gotRequest = request
	return openai.AudioResponse{Text: f.text}, f.err
}

func TestTranscribe_ReturnsTrimmedText(t *testing.T) {
	api := &fakeAudioAPI{text: "  welcome to the open house  \n"}
	c := &Client{api: api, model: "whisper-1"}

	text, err := c.Transcribe(context.Background(), "/tmp/audio.mp3")
	require.NoError(t, err)
	require.Equal(t, "welcome to the open house", text)
	require.Equal(t, "whisper-1", api.gotRequest.Model)
	require.Equal(t, "/tmp/audio.mp3", api.gotRequest.FilePath)
	require.Equal(t, openai.AudioResponseFormatText, api.gotRequest.Format)
}

func TestTranscribe_ServiceErrorPropagates(t *testing.T) {
	api := &fakeAudioAPI{err: errors.New("429 too many requests")}
	c := &Client{api: api, model: "whisper-1"}

	_, err := c.Transcribe(context.Background(), "/tmp/audio.mp3")
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}
