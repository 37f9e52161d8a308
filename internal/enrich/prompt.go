package enrich

import (
	"fmt"
	"strings"
)

// systemPrompt captures the instructions sent with every enrichment request.
// Keep updates centralized here so it is easy to tweak without hunting
// through call sites.
const systemPrompt = `You are a marketing analyst for real-estate short-form video.
Given a video transcript, title, and description, respond with strict JSON only, using exactly these keys:

{
  "summary": "two or three sentences describing what the video covers",
  "hook": "a suggested opening hook line for a similar video",
  "cta": "a suggested call to action",
  "triggers": ["zero or more trigger names, chosen ONLY from the provided trigger list"],
  "power_words": ["zero or more power word names, chosen ONLY from the provided power word list"],
  "category": "exactly one category name from the provided category list, or an empty string"
}

Never invent trigger, power word, or category names that are not in the provided lists.
Respond with the JSON object and nothing else.`

func buildUserPrompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Title: %s\n", in.Title)
	if strings.TrimSpace(in.Description) != "" {
		fmt.Fprintf(&b, "Description: %s\n", in.Description)
	}

	fmt.Fprintf(&b, "\nAvailable triggers: %s\n", joinTagNames(in.Triggers))
	fmt.Fprintf(&b, "Available power words: %s\n", joinTagNames(in.PowerWords))

	names := make([]string, 0, len(in.Categories))
	for _, c := range in.Categories {
		names = append(names, c.Name)
	}
	fmt.Fprintf(&b, "Available categories: %s\n", strings.Join(names, ", "))

	fmt.Fprintf(&b, "\nTranscript:\n%s\n", truncateTranscript(in.Transcript))

	return b.String()
}

func joinTagNames(tags []Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
