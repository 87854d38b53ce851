package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const contentColumns = "id, collection_fk, sort, start, label, selected_take_fk, text, format, type_fk"

// InsertContent inserts a single content row and returns its id.
func (q *Queries) InsertContent(ctx context.Context, c *Content) (int64, error) {
	if c.ID != 0 {
		return 0, fmt.Errorf("insert content: %w", ErrEntityHasID)
	}
	typeID, err := q.types.ID(c.Type)
	if err != nil {
		return 0, err
	}
	res, err := q.db.ExecContext(
		ctx,
		`INSERT INTO content (collection_fk, sort, start, label, selected_take_fk, text, format, type_fk)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CollectionID,
		c.Sort,
		c.Start,
		c.Label,
		nullableID(c.SelectedTakeID),
		nullableString(c.Text),
		nullableString(c.Format),
		typeID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert content: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("content insert id: %w", err)
	}
	return id, nil
}

// InsertContentBatch inserts the given rows without returning ids. Used by
// the importer where whole chapters arrive at once.
func (q *Queries) InsertContentBatch(ctx context.Context, items []*Content) error {
	if len(items) == 0 {
		return nil
	}
	stmt := `INSERT INTO content (collection_fk, sort, start, label, selected_take_fk, text, format, type_fk) VALUES `
	args := make([]any, 0, len(items)*8)
	for i, c := range items {
		if c.ID != 0 {
			return fmt.Errorf("insert content batch: %w", ErrEntityHasID)
		}
		typeID, err := q.types.ID(c.Type)
		if err != nil {
			return err
		}
		if i > 0 {
			stmt += ", "
		}
		stmt += "(?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			c.CollectionID, c.Sort, c.Start, c.Label,
			nullableID(c.SelectedTakeID), nullableString(c.Text), nullableString(c.Format), typeID,
		)
	}
	if _, err := q.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert content batch: %w", err)
	}
	return nil
}

// ContentByID fetches a content row by id.
func (q *Queries) ContentByID(ctx context.Context, id int64) (*Content, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content WHERE id = ?`, id)
	c, err := q.scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("content by id: %w", err)
	}
	return c, nil
}

// ContentForCollection returns a collection's content ordered by sort.
func (q *Queries) ContentForCollection(ctx context.Context, collectionID int64) ([]*Content, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT `+contentColumns+` FROM content WHERE collection_fk = ? ORDER BY sort`,
		collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("content for collection: %w", err)
	}
	defer rows.Close()
	return q.collectContent(rows)
}

// UpdateContent persists changes to an existing content row. The collection
// relationship is deliberately not touched; moving content between
// collections is a structural operation, not an update.
func (q *Queries) UpdateContent(ctx context.Context, c *Content) error {
	typeID, err := q.types.ID(c.Type)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(
		ctx,
		`UPDATE content
         SET sort = ?, start = ?, label = ?, selected_take_fk = ?, text = ?, format = ?, type_fk = ?
         WHERE id = ?`,
		c.Sort,
		c.Start,
		c.Label,
		nullableID(c.SelectedTakeID),
		nullableString(c.Text),
		nullableString(c.Format),
		typeID,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// DeleteContentLinkedToMetadata removes helper content rows whose links
// belong to the given container. Used when removing a help container whose
// rows live inside another container's chapters.
func (q *Queries) DeleteContentLinkedToMetadata(ctx context.Context, metadataID int64) error {
	if _, err := q.db.ExecContext(
		ctx,
		`DELETE FROM content WHERE id IN (
             SELECT resource_content_fk FROM resource_link WHERE dublin_core_fk = ?
         )`,
		metadataID,
	); err != nil {
		return fmt.Errorf("delete helper content for metadata: %w", err)
	}
	return nil
}

// DeleteContent removes a content row.
func (q *Queries) DeleteContent(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM content WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

func (q *Queries) scanContent(scanner interface{ Scan(dest ...any) error }) (*Content, error) {
	var (
		c            Content
		selectedTake sql.NullInt64
		text         sql.NullString
		format       sql.NullString
		typeID       int64
	)
	if err := scanner.Scan(&c.ID, &c.CollectionID, &c.Sort, &c.Start, &c.Label, &selectedTake, &text, &format, &typeID); err != nil {
		return nil, err
	}
	c.SelectedTakeID = selectedTake.Int64
	c.Text = text.String
	c.Format = format.String
	ct, err := q.types.Type(typeID)
	if err != nil {
		return nil, err
	}
	c.Type = ct
	return &c, nil
}

func (q *Queries) collectContent(rows *sql.Rows) ([]*Content, error) {
	var out []*Content
	for rows.Next() {
		c, err := q.scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
