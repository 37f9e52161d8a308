// Package transcribe converts extracted audio tracks to plain text through
// the OpenAI speech-to-text endpoint.
package transcribe

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type audioAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Client submits audio files for transcription.
type Client struct {
	api   audioAPI
	model string
}

// NewClient builds a Client talking to the real OpenAI API.
func NewClient(apiKey, model string) *Client {
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// Transcribe submits the audio file at audioPath and returns the transcript
// text. Service failures propagate to the caller; a failed transcription must
// be visible as a stage failure, unlike the benign "no audio stream" case the
// caller handles before ever reaching here.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
