package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Tag is an admin-curated taxonomy label (trigger or power word).
// Read-only to the pipeline; used only as a matching target.
type Tag struct {
	ID    string
	Name  string
	Slug  string
	Emoji *string
}

// Category is an admin-curated content category. Read-only to the pipeline.
type Category struct {
	ID   string
	Name string
	Slug string
}

func (db *DatabaseConnection) listTags(ctx context.Context, table string) ([]Tag, error) {
	query := fmt.Sprintf("SELECT id::text, name, slug, emoji FROM %s ORDER BY name", table)
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Tag, error) {
		var t Tag
		err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Emoji)
		return t, err
	})
}

// ListTriggers returns all trigger tags.
func (db *DatabaseConnection) ListTriggers(ctx context.Context) ([]Tag, error) {
	return db.listTags(ctx, "triggers")
}

// ListPowerWords returns all power-word tags.
func (db *DatabaseConnection) ListPowerWords(ctx context.Context) ([]Tag, error) {
	return db.listTags(ctx, "power_words")
}

// ListCategories returns all content categories.
func (db *DatabaseConnection) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := db.Query(ctx, "SELECT id::text, name, slug FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Category, error) {
		var c Category
		err := row.Scan(&c.ID, &c.Name, &c.Slug)
		return c, err
	})
}
