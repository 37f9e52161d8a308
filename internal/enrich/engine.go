// Package enrich derives structured marketing insights from a reel's
// transcript using a generative-language service constrained to the
// existing taxonomy.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// transcriptCharLimit bounds how much transcript is sent to the model,
	// to cap cost and latency on long recordings.
	transcriptCharLimit = 15000

	maxCompletionTokens = 1024
	temperature         = 0.4
)

// Tag is a taxonomy label the model may suggest. Suggestions are only ever
// matched back against these; the engine never invents new taxonomy entries.
type Tag struct {
	ID   string
	Name string
}

// Category is a content category the model may suggest.
type Category struct {
	ID   string
	Name string
}

// Input carries everything the engine needs for one reel.
type Input struct {
	Transcript  string
	Title       string
	Description string

	Triggers   []Tag
	PowerWords []Tag
	Categories []Category
}

// Result is the matched, ID-resolved outcome of one enrichment call.
type Result struct {
	Summary      string
	HookText     string
	CTA          string
	TriggerIDs   []string
	PowerWordIDs []string
	CategoryID   *string
}

// suggestion matches the strict-JSON shape the model is instructed to return.
type suggestion struct {
	Summary    string   `json:"summary"`
	Hook       string   `json:"hook"`
	CTA        string   `json:"cta"`
	Triggers   []string `json:"triggers"`
	PowerWords []string `json:"power_words"`
	Category   string   `json:"category"`
}

type chatAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Engine prompts the language model and resolves its suggestions to IDs.
type Engine struct {
	api   chatAPI
	model string
}

// NewEngine builds an Engine talking to the real OpenAI API.
func NewEngine(apiKey, model string) *Engine {
	return &Engine{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// Enrich asks the model for a summary, hook, call-to-action, and taxonomy
// suggestions, all constrained to the supplied label lists. A service failure
// is a hard error; a malformed model response is not — it degrades to an
// empty result so a flaky completion never fails the item.
func (e *Engine) Enrich(ctx context.Context, in Input) (Result, error) {
	resp, err := e.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   maxCompletionTokens,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(in)},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("enrich: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("enrich: empty choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	var s suggestion
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		slog.Warn("enrich: model returned unparseable JSON, dropping suggestions", "error", err)
		s = suggestion{}
	}

	result := Result{
		Summary:      strings.TrimSpace(s.Summary),
		HookText:     strings.TrimSpace(s.Hook),
		CTA:          strings.TrimSpace(s.CTA),
		TriggerIDs:   matchTags(s.Triggers, in.Triggers),
		PowerWordIDs: matchTags(s.PowerWords, in.PowerWords),
	}

	if s.Category != "" {
		for _, c := range in.Categories {
			if strings.EqualFold(strings.TrimSpace(s.Category), c.Name) {
				id := c.ID
				result.CategoryID = &id
				break
			}
		}
	}

	return result, nil
}

// matchTags resolves suggested label names to persisted IDs using
// case-insensitive exact-name comparison. Unmatched suggestions are silently
// dropped, and each tag is matched at most once.
func matchTags(names []string, tags []Tag) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, tag := range tags {
			if strings.EqualFold(name, tag.Name) && !seen[tag.ID] {
				seen[tag.ID] = true
				ids = append(ids, tag.ID)
				break
			}
		}
	}
	return ids
}

// truncateTranscript bounds the transcript to transcriptCharLimit characters.
func truncateTranscript(transcript string) string {
	if len(transcript) <= transcriptCharLimit {
		return transcript
	}
	return transcript[:transcriptCharLimit]
}
