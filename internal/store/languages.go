package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// EnsureLanguage finds the language row for slug, inserting it when absent.
// An empty name is filled from the BCP 47 registry when the slug parses as a
// language tag, falling back to the slug itself.
func (q *Queries) EnsureLanguage(ctx context.Context, slug, name, direction string) (*Language, error) {
	existing, err := q.LanguageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if name == "" {
		name = languageDisplayName(slug)
	}
	if direction == "" {
		direction = "ltr"
	}

	res, err := q.db.ExecContext(
		ctx,
		`INSERT INTO language (slug, name, direction) VALUES (?, ?, ?)`,
		slug, name, direction,
	)
	if err != nil {
		return nil, fmt.Errorf("insert language %s: %w", slug, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("language insert id: %w", err)
	}
	return &Language{ID: id, Slug: slug, Name: name, Direction: direction}, nil
}

// LanguageBySlug fetches a language by slug, returning nil when absent.
func (q *Queries) LanguageBySlug(ctx context.Context, slug string) (*Language, error) {
	row := q.db.QueryRowContext(ctx, `SELECT id, slug, name, direction FROM language WHERE slug = ?`, slug)
	lang := &Language{}
	err := row.Scan(&lang.ID, &lang.Slug, &lang.Name, &lang.Direction)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("language by slug: %w", err)
	}
	return lang, nil
}

// LanguageByID fetches a language by id.
func (q *Queries) LanguageByID(ctx context.Context, id int64) (*Language, error) {
	row := q.db.QueryRowContext(ctx, `SELECT id, slug, name, direction FROM language WHERE id = ?`, id)
	lang := &Language{}
	err := row.Scan(&lang.ID, &lang.Slug, &lang.Name, &lang.Direction)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("language by id: %w", err)
	}
	return lang, nil
}

// Languages lists all known languages ordered by slug.
func (q *Queries) Languages(ctx context.Context) ([]*Language, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, slug, name, direction FROM language ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()

	var langs []*Language
	for rows.Next() {
		lang := &Language{}
		if err := rows.Scan(&lang.ID, &lang.Slug, &lang.Name, &lang.Direction); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		langs = append(langs, lang)
	}
	return langs, rows.Err()
}

func languageDisplayName(slug string) string {
	tag, err := language.Parse(slug)
	if err != nil {
		return slug
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return slug
}
