package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

type fakeChatAPI struct {
	gotRequest openai.ChatCompletionRequest
	content    string
	err        error
}

func (f *fakeChatAPI) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.gotRequest = request
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func testInput() Input {
	return Input{
		Transcript:  "welcome to this stunning three bedroom home",
		Title:       "Tour: 42 Elm Street",
		Description: "quick walkthrough",
		Triggers: []Tag{
			{ID: "t1", Name: "Curiosity"},
			{ID: "t2", Name: "Urgency"},
		},
		PowerWords: []Tag{
			{ID: "p1", Name: "Stunning"},
			{ID: "p2", Name: "Exclusive"},
		},
		Categories: []Category{
			{ID: "c1", Name: "Home Tour"},
			{ID: "c2", Name: "Market Update"},
		},
	}
}

func TestEnrich_MatchesSuggestionsToIDs(t *testing.T) {
	api := &fakeChatAPI{content: `{
		"summary": "A walkthrough of a three bedroom home.",
		"hook": "You won't believe this kitchen.",
		"cta": "DM me for a private showing.",
		"triggers": ["curiosity", "URGENCY"],
		"power_words": ["Stunning"],
		"category": "home tour"
	}`}
	e := &Engine{api: api, model: "gpt-4o-mini"}

	result, err := e.Enrich(context.Background(), testInput())
	require.NoError(t, err)
	require.Equal(t, "A walkthrough of a three bedroom home.", result.Summary)
	require.Equal(t, "You won't believe this kitchen.", result.HookText)
	require.Equal(t, "DM me for a private showing.", result.CTA)
	require.Equal(t, []string{"t1", "t2"}, result.TriggerIDs)
	require.Equal(t, []string{"p1"}, result.PowerWordIDs)
	require.NotNil(t, result.CategoryID)
	require.Equal(t, "c1", *result.CategoryID)

	// JSON mode must be requested.
	require.NotNil(t, api.gotRequest.ResponseFormat)
	require.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, api.gotRequest.ResponseFormat.Type)
}

func TestEnrich_UnknownSuggestionsAreDropped(t *testing.T) {
	api := &fakeChatAPI{content: `{
		"summary": "ok",
		"triggers": ["Scarcity", "Curiosity"],
		"power_words": ["Unbelievable"],
		"category": "Lifestyle"
	}`}
	e := &Engine{api: api, model: "gpt-4o-mini"}

	result, err := e.Enrich(context.Background(), testInput())
	require.NoError(t, err)
	require.Equal(t, []string{"t1"}, result.TriggerIDs, "unknown trigger names must be dropped, not created")
	require.Empty(t, result.PowerWordIDs)
	require.Nil(t, result.CategoryID)
}

func TestEnrich_DuplicateSuggestionsMatchOnce(t *testing.T) {
	api := &fakeChatAPI{content: `{"triggers": ["Curiosity", "curiosity", "CURIOSITY"]}`}
	e := &Engine{api: api, model: "gpt-4o-mini"}

	result, err := e.Enrich(context.Background(), testInput())
	require.NoError(t, err)
	require.Equal(t, []string{"t1"}, result.TriggerIDs)
}

func TestEnrich_UnparseableJSONDegradesToEmptyResult(t *testing.T) {
	api := &fakeChatAPI{content: "Sure! Here are my thoughts about the video..."}
	e := &Engine{api: api, model: "gpt-4o-mini"}

	result, err := e.Enrich(context.Background(), testInput())
	require.NoError(t, err, "a malformed model response must not fail the item")
	require.Empty(t, result.Summary)
	require.Empty(t, result.TriggerIDs)
	require.Nil(t, result.CategoryID)
}

func TestEnrich_ServiceErrorPropagates(t *testing.T) {
	api := &fakeChatAPI{err: errors.New("503 service unavailable")}
	e := &Engine{api: api, model: "gpt-4o-mini"}

	_, err := e.Enrich(context.Background(), testInput())
	require.Error(t, err)
}

func TestEnrich_TranscriptIsTruncatedInPrompt(t *testing.T) {
	in := testInput()
	in.Transcript = strings.Repeat("a", transcriptCharLimit+500)

	api := &fakeChatAPI{content: "{}"}
	e := &Engine{api: api, model: "gpt-4o-mini"}

	_, err := e.Enrich(context.Background(), in)
	require.NoError(t, err)

	userPrompt := api.gotRequest.Messages[1].Content
	require.NotContains(t, userPrompt, strings.Repeat("a", transcriptCharLimit+1))
	require.Contains(t, userPrompt, strings.Repeat("a", transcriptCharLimit))
}

func TestTruncateTranscript(t *testing.T) {
	require.Equal(t, "short", truncateTranscript("short"))

	long := strings.Repeat("x", transcriptCharLimit+1)
	require.Len(t, truncateTranscript(long), transcriptCharLimit)
}
