package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const collectionColumns = "id, parent_fk, source_fk, slug, title, label, sort, dublin_core_fk, modified_ts"

// InsertCollection inserts a new collection row and returns its id. The
// entity must not carry an id yet.
func (q *Queries) InsertCollection(ctx context.Context, c *Collection) (int64, error) {
	if c.ID != 0 {
		return 0, fmt.Errorf("insert collection: %w", ErrEntityHasID)
	}
	res, err := q.db.ExecContext(
		ctx,
		`INSERT INTO collection (parent_fk, source_fk, slug, title, label, sort, dublin_core_fk, modified_ts)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(c.ParentID),
		nullableID(c.SourceID),
		c.Slug,
		c.Title,
		c.Label,
		c.Sort,
		nullableID(c.MetadataID),
		c.ModifiedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert collection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("collection insert id: %w", err)
	}
	return id, nil
}

// CollectionByID fetches a collection by id.
func (q *Queries) CollectionByID(ctx context.Context, id int64) (*Collection, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+collectionColumns+` FROM collection WHERE id = ?`, id)
	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("collection by id: %w", err)
	}
	return c, nil
}

// CollectionByAnchor finds the collection matching slug, label, and owning
// metadata. This is the lookup helper packages anchor onto; it returns nil
// when no host exists so callers can skip unmatched nodes.
func (q *Queries) CollectionByAnchor(ctx context.Context, slug, label string, metadataID int64) (*Collection, error) {
	row := q.db.QueryRowContext(
		ctx,
		`SELECT `+collectionColumns+` FROM collection WHERE slug = ? AND label = ? AND dublin_core_fk = ?`,
		slug, label, metadataID,
	)
	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("collection by anchor: %w", err)
	}
	return c, nil
}

// ChildCollections returns the direct children of a collection ordered by sort.
func (q *Queries) ChildCollections(ctx context.Context, parentID int64) ([]*Collection, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT `+collectionColumns+` FROM collection WHERE parent_fk = ? ORDER BY sort`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("child collections: %w", err)
	}
	defer rows.Close()
	return collectCollections(rows)
}

// RootSourceCollections returns collections with neither parent nor source:
// the roots of imported source books and bundles.
func (q *Queries) RootSourceCollections(ctx context.Context) ([]*Collection, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT `+collectionColumns+` FROM collection WHERE parent_fk IS NULL AND source_fk IS NULL ORDER BY sort`,
	)
	if err != nil {
		return nil, fmt.Errorf("root source collections: %w", err)
	}
	defer rows.Close()
	return collectCollections(rows)
}

// RootCollectionsForMetadata returns the parentless collections owned by a
// container, ordered by sort.
func (q *Queries) RootCollectionsForMetadata(ctx context.Context, metadataID int64) ([]*Collection, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT `+collectionColumns+` FROM collection WHERE parent_fk IS NULL AND dublin_core_fk = ? ORDER BY sort`,
		metadataID,
	)
	if err != nil {
		return nil, fmt.Errorf("root collections for metadata: %w", err)
	}
	defer rows.Close()
	return collectCollections(rows)
}

// ProjectCollections returns project-level collections. Derived projects
// carry a source_fk back to the collection they were derived from; source
// projects do not.
func (q *Queries) ProjectCollections(ctx context.Context, derived bool) ([]*Collection, error) {
	clause := `source_fk IS NULL`
	if derived {
		clause = `source_fk IS NOT NULL`
	}
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT `+collectionColumns+` FROM collection WHERE label = 'project' AND `+clause+` ORDER BY sort`,
	)
	if err != nil {
		return nil, fmt.Errorf("project collections: %w", err)
	}
	defer rows.Close()
	return collectCollections(rows)
}

// UpdateCollection persists changes to an existing collection row.
func (q *Queries) UpdateCollection(ctx context.Context, c *Collection) error {
	_, err := q.db.ExecContext(
		ctx,
		`UPDATE collection
         SET parent_fk = ?, source_fk = ?, slug = ?, title = ?, label = ?, sort = ?, dublin_core_fk = ?, modified_ts = ?
         WHERE id = ?`,
		nullableID(c.ParentID),
		nullableID(c.SourceID),
		c.Slug,
		c.Title,
		c.Label,
		c.Sort,
		nullableID(c.MetadataID),
		c.ModifiedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	return nil
}

// TouchCollection stamps modified_ts on a collection row.
func (q *Queries) TouchCollection(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(
		ctx,
		`UPDATE collection SET modified_ts = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("touch collection: %w", err)
	}
	return nil
}

// DeleteCollection removes a collection; descendant collections, content,
// and incoming resource links go with it via the schema's cascade rules.
func (q *Queries) DeleteCollection(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM collection WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

func scanCollection(scanner interface{ Scan(dest ...any) error }) (*Collection, error) {
	var (
		c        Collection
		parent   sql.NullInt64
		source   sql.NullInt64
		metadata sql.NullInt64
	)
	if err := scanner.Scan(&c.ID, &parent, &source, &c.Slug, &c.Title, &c.Label, &c.Sort, &metadata, &c.ModifiedAt); err != nil {
		return nil, err
	}
	c.ParentID = parent.Int64
	c.SourceID = source.Int64
	c.MetadataID = metadata.Int64
	return &c, nil
}

func collectCollections(rows *sql.Rows) ([]*Collection, error) {
	var out []*Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
