// Package pipeline drives the batch ingestion and enrichment of reels:
// acquire source video, normalize it for streaming, upload, transcribe,
// derive marketing insights, and persist — one reel at a time.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"openhouse.systems/reeldesk/internal/db"
	"openhouse.systems/reeldesk/internal/enrich"
	"openhouse.systems/reeldesk/pkg/ytdlp"
)

// Options controls one pipeline run.
type Options struct {
	// Limit caps how many reels one run processes.
	Limit int
	// Delay is the pause between items, respecting third-party API quotas.
	Delay time.Duration
	// SkipMedia skips download/normalize/upload and selects reels for
	// enrichment instead.
	SkipMedia bool
	// SkipAI skips the enrichment stage.
	SkipAI bool
	// DryRun disables all datastore writes.
	DryRun bool
}

// Stats aggregates the outcome of one run.
type Stats struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
}

// Acquirer fetches source media from the external platform.
type Acquirer interface {
	GetInfo(ctx context.Context, url string, extraArgs ...string) (*ytdlp.Info, error)
	DownloadVideo(ctx context.Context, url string, destPath string, extraArgs ...string) error
	DownloadThumbnail(ctx context.Context, url string, destDir string, extraArgs ...string) (string, error)
}

// MediaProcessor runs the local ffmpeg steps.
type MediaProcessor interface {
	Normalize(ctx context.Context, src, dst string) error
	ExtractAudio(ctx context.Context, videoPath, workDir string) (path string, hasAudio bool, err error)
}

// Transcriber converts an audio file to plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Enricher derives structured marketing insights from a transcript.
type Enricher interface {
	Enrich(ctx context.Context, in enrich.Input) (enrich.Result, error)
}

// Uploader stores local media bytes and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath, folder, filename string) (string, error)
}

// Store is the datastore surface the pipeline consumes.
type Store interface {
	ListReelsMissingVideo(ctx context.Context, limit int) ([]*db.Reel, error)
	ListReelsMissingSummary(ctx context.Context, limit int) ([]*db.Reel, error)
	ListTriggers(ctx context.Context) ([]db.Tag, error)
	ListPowerWords(ctx context.Context) ([]db.Tag, error)
	ListCategories(ctx context.Context) ([]db.Category, error)
	UpdateReelFields(ctx context.Context, id string, fields map[string]any) error
	ReplaceReelTriggers(ctx context.Context, reelID string, triggerIDs []string) error
	ReplaceReelPowerWords(ctx context.Context, reelID string, powerWordIDs []string) error
}

// Pipeline wires the stages together.
type Pipeline struct {
	Store       Store
	Acquirer    Acquirer
	Media       MediaProcessor
	Transcriber Transcriber
	Enricher    Enricher
	Uploader    Uploader
}

// Run processes eligible reels strictly sequentially and returns aggregate
// statistics. Per-item failures are isolated: they are counted and logged,
// and the run always completes. The returned error is non-nil only when the
// initial eligibility listing fails.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Stats, error) {
	log := slog.With("run_id", uuid.NewString())
	var stats Stats

	reels, skipped, err := p.listEligible(ctx, opts)
	if err != nil {
		return stats, err
	}
	stats.Skipped = skipped

	log.Info("pipeline: run starting",
		"eligible", len(reels), "skipped", skipped,
		"limit", opts.Limit, "skip_media", opts.SkipMedia, "skip_ai", opts.SkipAI, "dry_run", opts.DryRun)

	for i, reel := range reels {
		stats.Processed++

		if err := p.processReel(ctx, log, reel, opts); err != nil {
			stats.Failed++
			log.Error("pipeline: reel failed", "reel_id", reel.ID, "error", err)
		} else {
			stats.Succeeded++
		}

		if i < len(reels)-1 && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				log.Warn("pipeline: run interrupted", "remaining", len(reels)-i-1)
				return stats, nil
			case <-time.After(opts.Delay):
			}
		}
	}

	log.Info("pipeline: run complete",
		"processed", stats.Processed, "succeeded", stats.Succeeded,
		"failed", stats.Failed, "skipped", stats.Skipped)

	return stats, nil
}

// listEligible queries the stage-appropriate candidates, excludes carousel
// posts, and truncates to the configured limit. The query is capped to twice
// the limit to absorb post-filter exclusions.
func (p *Pipeline) listEligible(ctx context.Context, opts Options) ([]*db.Reel, int, error) {
	var (
		reels []*db.Reel
		err   error
	)
	switch {
	case !opts.SkipMedia:
		reels, err = p.Store.ListReelsMissingVideo(ctx, opts.Limit*2)
	case !opts.SkipAI:
		reels, err = p.Store.ListReelsMissingSummary(ctx, opts.Limit*2)
	default:
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("pipeline: list eligible reels: %w", err)
	}

	skipped := 0
	eligible := make([]*db.Reel, 0, len(reels))
	for _, r := range reels {
		if isCarouselURL(r.SourceURL) {
			skipped++
			continue
		}
		eligible = append(eligible, r)
	}

	if len(eligible) > opts.Limit {
		eligible = eligible[:opts.Limit]
	}
	return eligible, skipped, nil
}

// isCarouselURL reports whether the source URL points at a slide of a
// multi-image carousel post. Those records carry no video to download.
func isCarouselURL(sourceURL string) bool {
	return strings.Contains(sourceURL, "img_index=")
}
