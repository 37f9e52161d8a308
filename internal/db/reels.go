package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
)

// Reel is a short-video content record as seen by the enrichment pipeline.
// Nullable columns are pointers; nil means the field has not been populated yet.
type Reel struct {
	ID          string
	Platform    string
	SourceURL   string
	SourceID    *string
	Name        string
	Description *string
	VideoURL    *string
	CoverURL    *string
	Transcript  *string
	AISummary   *string
	HookText    *string
	CTA         *string
	CategoryID  *string
	CreatedAt   time.Time
}

const reelColumns = `id::text, platform, source_url, source_id, name, description,
	video_url, cover_url, transcript, ai_summary, hook_text, cta, category_id::text, created_at`

func scanReel(row pgx.Row) (*Reel, error) {
	var r Reel
	err := row.Scan(
		&r.ID, &r.Platform, &r.SourceURL, &r.SourceID, &r.Name, &r.Description,
		&r.VideoURL, &r.CoverURL, &r.Transcript, &r.AISummary, &r.HookText, &r.CTA,
		&r.CategoryID, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DatabaseConnection) listReels(ctx context.Context, nullColumn string, limit int) ([]*Reel, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reels
		WHERE active AND %s IS NULL
		ORDER BY created_at ASC
		LIMIT $1`, reelColumns, nullColumn)

	rows, err := db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list reels: %w", err)
	}
	defer rows.Close()

	var reels []*Reel
	for rows.Next() {
		r, err := scanReel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reel: %w", err)
		}
		reels = append(reels, r)
	}
	return reels, rows.Err()
}

// ListReelsMissingVideo returns active reels with no stored video URL,
// oldest first.
func (db *DatabaseConnection) ListReelsMissingVideo(ctx context.Context, limit int) ([]*Reel, error) {
	return db.listReels(ctx, "video_url", limit)
}

// ListReelsMissingSummary returns active reels that have not been enriched,
// oldest first.
func (db *DatabaseConnection) ListReelsMissingSummary(ctx context.Context, limit int) ([]*Reel, error) {
	return db.listReels(ctx, "ai_summary", limit)
}

// reelPatchColumns is the allowlist of columns UpdateReelFields may set.
var reelPatchColumns = map[string]bool{
	"video_url":   true,
	"cover_url":   true,
	"transcript":  true,
	"ai_summary":  true,
	"hook_text":   true,
	"cta":         true,
	"category_id": true,
}

// UpdateReelFields applies a partial update to one reel. Only columns present
// in fields are touched; updated_at is always refreshed. The caller is
// responsible for only including columns that are currently null so that
// repeated runs never overwrite populated values.
func (db *DatabaseConnection) UpdateReelFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !reelPatchColumns[col] {
			return fmt.Errorf("update reel: column %q is not updatable", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	set := ""
	args := []any{id}
	for i, col := range cols {
		if i > 0 {
			set += ", "
		}
		cast := ""
		if col == "category_id" {
			cast = "::uuid"
		}
		set += fmt.Sprintf("%s = $%d%s", col, i+2, cast)
		args = append(args, fields[col])
	}

	query := fmt.Sprintf("UPDATE reels SET %s, updated_at = now() WHERE id = $1::uuid", set)
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update reel %s: %w", id, err)
	}
	return nil
}

// ReplaceReelTriggers atomically replaces the trigger association set of one reel.
func (db *DatabaseConnection) ReplaceReelTriggers(ctx context.Context, reelID string, triggerIDs []string) error {
	return db.replaceAssociations(ctx, "reel_triggers", "trigger_id", reelID, triggerIDs)
}

// ReplaceReelPowerWords atomically replaces the power-word association set of one reel.
func (db *DatabaseConnection) ReplaceReelPowerWords(ctx context.Context, reelID string, powerWordIDs []string) error {
	return db.replaceAssociations(ctx, "reel_power_words", "power_word_id", reelID, powerWordIDs)
}

// replaceAssociations runs delete-then-insert in a single transaction so the
// stored set always equals exactly the supplied set, never an accumulation.
func (db *DatabaseConnection) replaceAssociations(ctx context.Context, table, column, reelID string, ids []string) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace %s: begin: %w", table, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE reel_id = $1::uuid", table), reelID); err != nil {
		return fmt.Errorf("replace %s: delete: %w", table, err)
	}

	if len(ids) > 0 {
		batch := &pgx.Batch{}
		insert := fmt.Sprintf("INSERT INTO %s (reel_id, %s) VALUES ($1::uuid, $2::uuid)", table, column)
		for _, id := range ids {
			batch.Queue(insert, reelID, id)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("replace %s: insert: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("replace %s: commit: %w", table, err)
	}
	return nil
}
