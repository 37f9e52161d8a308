package pipeline

import (
	"sort"

	"openhouse.systems/reeldesk/internal/db"
	"openhouse.systems/reeldesk/internal/enrich"
)

// derived collects everything one item's run produced.
type derived struct {
	VideoURL   *string
	CoverURL   *string
	Transcript *string
	Enrichment *enrich.Result
}

// buildPatch assembles the partial update for one reel. A column appears in
// the patch only when it is currently null on the record AND a derived value
// exists for it, so a populated field is never overwritten — applying the
// same patch twice yields the same record state.
func buildPatch(reel *db.Reel, d derived) map[string]any {
	patch := make(map[string]any)

	if reel.VideoURL == nil && d.VideoURL != nil {
		patch["video_url"] = *d.VideoURL
	}
	if reel.CoverURL == nil && d.CoverURL != nil {
		patch["cover_url"] = *d.CoverURL
	}
	if reel.Transcript == nil && d.Transcript != nil {
		patch["transcript"] = *d.Transcript
	}

	if d.Enrichment != nil {
		if reel.AISummary == nil && d.Enrichment.Summary != "" {
			patch["ai_summary"] = d.Enrichment.Summary
		}
		if reel.HookText == nil && d.Enrichment.HookText != "" {
			patch["hook_text"] = d.Enrichment.HookText
		}
		if reel.CTA == nil && d.Enrichment.CTA != "" {
			patch["cta"] = d.Enrichment.CTA
		}
		if reel.CategoryID == nil && d.Enrichment.CategoryID != nil {
			patch["category_id"] = *d.Enrichment.CategoryID
		}
	}

	return patch
}

func patchColumns(patch map[string]any) []string {
	cols := make([]string, 0, len(patch))
	for col := range patch {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}
