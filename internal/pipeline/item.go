package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"openhouse.systems/reeldesk/internal/db"
	"openhouse.systems/reeldesk/internal/enrich"
)

// Per-stage subprocess timeouts. Expiry is a stage failure isolated to the item.
const (
	downloadTimeout   = 300 * time.Second
	thumbnailTimeout  = 60 * time.Second
	normalizeTimeout  = 120 * time.Second
	audioStageTimeout = 300 * time.Second
	infoTimeout       = 30 * time.Second
)

// Object store folders for delivered media.
const (
	videoFolder = "reels"
	coverFolder = "covers"
)

// processReel runs every applicable stage for one reel inside a dedicated
// working directory that is removed on every exit path.
func (p *Pipeline) processReel(ctx context.Context, log *slog.Logger, reel *db.Reel, opts Options) error {
	log = log.With("reel_id", reel.ID, "platform", reel.Platform)

	workDir, err := os.MkdirTemp("", "reeldesk-*")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			log.Warn("pipeline: failed to remove work dir", "dir", workDir, "error", rmErr)
		}
	}()

	var d derived
	localVideo := ""

	// A populated video_url is never re-downloaded.
	if !opts.SkipMedia && reel.VideoURL == nil {
		localVideo, err = p.runMediaStage(ctx, log, reel, workDir, &d)
		if err != nil {
			return err
		}
	}

	// A populated transcript is never re-transcribed; without a freshly
	// downloaded file there is nothing to transcribe from.
	if reel.Transcript == nil && localVideo != "" {
		d.Transcript, err = p.runTranscriptStage(ctx, log, localVideo, workDir)
		if err != nil {
			return err
		}
	}

	if !opts.SkipAI && reel.AISummary == nil {
		transcript := ""
		switch {
		case reel.Transcript != nil:
			transcript = *reel.Transcript
		case d.Transcript != nil:
			transcript = *d.Transcript
		}

		if transcript == "" {
			log.Info("pipeline: no transcript available, skipping enrichment")
		} else {
			result, err := p.runEnrichStage(ctx, reel, transcript)
			if err != nil {
				return err
			}
			d.Enrichment = &result
		}
	}

	return p.persist(ctx, log, reel, d, opts)
}

func (p *Pipeline) runMediaStage(ctx context.Context, log *slog.Logger, reel *db.Reel, workDir string, d *derived) (string, error) {
	infoCtx, cancelInfo := context.WithTimeout(ctx, infoTimeout)
	if info, err := p.Acquirer.GetInfo(infoCtx, reel.SourceURL); err == nil {
		log.Debug("pipeline: source metadata", "title", info.Title, "duration_s", info.Duration, "extractor", info.Extractor)
	}
	cancelInfo()

	rawPath := filepath.Join(workDir, "raw.mp4")

	log.Info("pipeline: downloading video", "url", reel.SourceURL)
	dlCtx, cancelDl := context.WithTimeout(ctx, downloadTimeout)
	err := p.Acquirer.DownloadVideo(dlCtx, reel.SourceURL, rawPath)
	cancelDl()
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}

	videoPath := filepath.Join(workDir, "video.mp4")
	normCtx, cancelNorm := context.WithTimeout(ctx, normalizeTimeout)
	err = p.Media.Normalize(normCtx, rawPath, videoPath)
	cancelNorm()
	if err != nil {
		return "", fmt.Errorf("normalize video: %w", err)
	}

	videoURL, err := p.Uploader.Upload(ctx, videoPath, videoFolder, reel.ID+".mp4")
	if err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}
	d.VideoURL = &videoURL

	// Thumbnail acquisition is best-effort: a missing thumbnail must never
	// abort the pipeline. A failed upload of an acquired thumbnail still must.
	if reel.CoverURL == nil {
		thumbCtx, cancelThumb := context.WithTimeout(ctx, thumbnailTimeout)
		thumbPath, thumbErr := p.Acquirer.DownloadThumbnail(thumbCtx, reel.SourceURL, workDir)
		cancelThumb()
		if thumbErr != nil {
			log.Warn("pipeline: no thumbnail available", "error", thumbErr)
		} else {
			coverURL, err := p.Uploader.Upload(ctx, thumbPath, coverFolder, reel.ID+".jpg")
			if err != nil {
				return "", fmt.Errorf("upload cover: %w", err)
			}
			d.CoverURL = &coverURL
		}
	}

	return videoPath, nil
}

func (p *Pipeline) runTranscriptStage(ctx context.Context, log *slog.Logger, localVideo, workDir string) (*string, error) {
	audioCtx, cancel := context.WithTimeout(ctx, audioStageTimeout)
	audioPath, hasAudio, err := p.Media.ExtractAudio(audioCtx, localVideo, workDir)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("extract audio: %w", err)
	}
	if !hasAudio {
		// Benign absence: silent clips are valid content.
		log.Info("pipeline: no audio stream, skipping transcription")
		return nil, nil
	}
	defer os.Remove(audioPath)

	text, err := p.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return &text, nil
}

// runEnrichStage fetches the taxonomy fresh on every invocation so newly
// curated tags are usable without a restart.
func (p *Pipeline) runEnrichStage(ctx context.Context, reel *db.Reel, transcript string) (enrich.Result, error) {
	triggers, err := p.Store.ListTriggers(ctx)
	if err != nil {
		return enrich.Result{}, fmt.Errorf("list triggers: %w", err)
	}
	powerWords, err := p.Store.ListPowerWords(ctx)
	if err != nil {
		return enrich.Result{}, fmt.Errorf("list power words: %w", err)
	}
	categories, err := p.Store.ListCategories(ctx)
	if err != nil {
		return enrich.Result{}, fmt.Errorf("list categories: %w", err)
	}

	in := enrich.Input{
		Transcript: transcript,
		Title:      reel.Name,
		Triggers:   toEnrichTags(triggers),
		PowerWords: toEnrichTags(powerWords),
		Categories: toEnrichCategories(categories),
	}
	if reel.Description != nil {
		in.Description = *reel.Description
	}

	result, err := p.Enricher.Enrich(ctx, in)
	if err != nil {
		return enrich.Result{}, fmt.Errorf("enrich: %w", err)
	}
	return result, nil
}

func (p *Pipeline) persist(ctx context.Context, log *slog.Logger, reel *db.Reel, d derived, opts Options) error {
	patch := buildPatch(reel, d)

	if opts.DryRun {
		log.Info("pipeline: dry run, skipping writes",
			"fields", patchColumns(patch),
			"trigger_count", countIDs(d.Enrichment, true),
			"power_word_count", countIDs(d.Enrichment, false))
		return nil
	}

	if len(patch) > 0 {
		if err := p.Store.UpdateReelFields(ctx, reel.ID, patch); err != nil {
			return fmt.Errorf("update reel: %w", err)
		}
	}

	if d.Enrichment != nil {
		if len(d.Enrichment.TriggerIDs) > 0 {
			if err := p.Store.ReplaceReelTriggers(ctx, reel.ID, d.Enrichment.TriggerIDs); err != nil {
				return fmt.Errorf("replace triggers: %w", err)
			}
		}
		if len(d.Enrichment.PowerWordIDs) > 0 {
			if err := p.Store.ReplaceReelPowerWords(ctx, reel.ID, d.Enrichment.PowerWordIDs); err != nil {
				return fmt.Errorf("replace power words: %w", err)
			}
		}
	}

	log.Info("pipeline: reel processed", "fields", patchColumns(patch))
	return nil
}

func toEnrichTags(tags []db.Tag) []enrich.Tag {
	out := make([]enrich.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, enrich.Tag{ID: t.ID, Name: t.Name})
	}
	return out
}

func toEnrichCategories(categories []db.Category) []enrich.Category {
	out := make([]enrich.Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, enrich.Category{ID: c.ID, Name: c.Name})
	}
	return out
}

func countIDs(r *enrich.Result, triggers bool) int {
	if r == nil {
		return 0
	}
	if triggers {
		return len(r.TriggerIDs)
	}
	return len(r.PowerWordIDs)
}
