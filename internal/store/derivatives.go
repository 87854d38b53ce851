package store

import (
	"context"
	"fmt"
)

// LinkDerivative records that a derived content row was produced from a
// source content row. Repeating the pair is a no-op.
func (q *Queries) LinkDerivative(ctx context.Context, derivedID, sourceID int64) error {
	if _, err := q.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO content_derivative (content_fk, source_fk) VALUES (?, ?)`,
		derivedID, sourceID,
	); err != nil {
		return fmt.Errorf("link derivative: %w", err)
	}
	return nil
}

// SourcesOfContent returns the source content rows a derived row was copied
// from, ordered by source id.
func (q *Queries) SourcesOfContent(ctx context.Context, derivedID int64) ([]*Content, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT c.id, c.collection_fk, c.sort, c.start, c.label, c.selected_take_fk, c.text, c.format, c.type_fk
         FROM content_derivative cd
         JOIN content c ON c.id = cd.source_fk
         WHERE cd.content_fk = ?
         ORDER BY c.id`,
		derivedID,
	)
	if err != nil {
		return nil, fmt.Errorf("sources of content: %w", err)
	}
	defer rows.Close()
	return q.collectContent(rows)
}

// DerivativesOfContent returns the derived content rows copied from a source
// row, ordered by derived id.
func (q *Queries) DerivativesOfContent(ctx context.Context, sourceID int64) ([]*Content, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT c.id, c.collection_fk, c.sort, c.start, c.label, c.selected_take_fk, c.text, c.format, c.type_fk
         FROM content_derivative cd
         JOIN content c ON c.id = cd.content_fk
         WHERE cd.source_fk = ?
         ORDER BY c.id`,
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("derivatives of content: %w", err)
	}
	defer rows.Close()
	return q.collectContent(rows)
}

// ReplaceContentSources rewrites the source set of a derived row.
func (q *Queries) ReplaceContentSources(ctx context.Context, derivedID int64, sourceIDs []int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM content_derivative WHERE content_fk = ?`, derivedID); err != nil {
		return fmt.Errorf("clear content sources: %w", err)
	}
	for _, sourceID := range sourceIDs {
		if err := q.LinkDerivative(ctx, derivedID, sourceID); err != nil {
			return err
		}
	}
	return nil
}
