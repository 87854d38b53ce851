package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const metadataColumns = "id, conforms_to, creator, description, format, identifier, issued, language_fk, modified, publisher, subject, type, title, version, path, derived_from_fk"

// InsertResourceMetadata inserts a metadata row and returns its id.
func (q *Queries) InsertResourceMetadata(ctx context.Context, m *ResourceMetadata) (int64, error) {
	if m.ID != 0 {
		return 0, fmt.Errorf("insert resource metadata: %w", ErrEntityHasID)
	}
	res, err := q.db.ExecContext(
		ctx,
		`INSERT INTO resource_metadata (
            conforms_to, creator, description, format, identifier, issued, language_fk,
            modified, publisher, subject, type, title, version, path, derived_from_fk
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ConformsTo, m.Creator, m.Description, m.Format, m.Identifier, m.Issued, m.LanguageID,
		m.Modified, m.Publisher, m.Subject, m.Type, m.Title, m.Version, m.Path, nullableID(m.DerivedFromID),
	)
	if err != nil {
		return 0, fmt.Errorf("insert resource metadata: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resource metadata insert id: %w", err)
	}
	return id, nil
}

// ResourceMetadataByID fetches a metadata row by id.
func (q *Queries) ResourceMetadataByID(ctx context.Context, id int64) (*ResourceMetadata, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+metadataColumns+` FROM resource_metadata WHERE id = ?`, id)
	m, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resource metadata by id: %w", err)
	}
	return m, nil
}

// AllResourceMetadata lists every metadata row.
func (q *Queries) AllResourceMetadata(ctx context.Context) ([]*ResourceMetadata, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+metadataColumns+` FROM resource_metadata ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list resource metadata: %w", err)
	}
	defer rows.Close()
	return collectMetadata(rows)
}

// LatestVersion returns the highest-versioned metadata row for the given
// language slug and identifier regardless of creator or derivation, or nil.
func (q *Queries) LatestVersion(ctx context.Context, languageSlug, identifier string) (*ResourceMetadata, error) {
	row := q.db.QueryRowContext(
		ctx,
		`SELECT `+prefixedMetadataColumns+`
         FROM resource_metadata m JOIN language l ON m.language_fk = l.id
         WHERE l.slug = ? AND m.identifier = ?
         ORDER BY m.version DESC LIMIT 1`,
		languageSlug, identifier,
	)
	m, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest version: %w", err)
	}
	return m, nil
}

// LatestVersionMatch returns the highest-versioned source metadata row for
// the given language slug and identifier, preferring an exact creator match
// and relaxing to any creator when none matches. derivedFromID 0 restricts
// the search to source rows (derived_from IS NULL).
func (q *Queries) LatestVersionMatch(ctx context.Context, languageSlug, identifier, creator string, derivedFromID int64) (*ResourceMetadata, error) {
	m, err := q.latestVersionWhere(ctx, languageSlug, identifier, creator, derivedFromID)
	if err != nil || m != nil {
		return m, err
	}
	return q.latestVersionWhere(ctx, languageSlug, identifier, "", derivedFromID)
}

func (q *Queries) latestVersionWhere(ctx context.Context, languageSlug, identifier, creator string, derivedFromID int64) (*ResourceMetadata, error) {
	stmt := `SELECT ` + prefixedMetadataColumns + `
         FROM resource_metadata m JOIN language l ON m.language_fk = l.id
         WHERE l.slug = ? AND m.identifier = ?`
	args := []any{languageSlug, identifier}
	if creator != "" {
		stmt += ` AND m.creator = ?`
		args = append(args, creator)
	}
	if derivedFromID == 0 {
		stmt += ` AND m.derived_from_fk IS NULL`
	} else {
		stmt += ` AND m.derived_from_fk = ?`
		args = append(args, derivedFromID)
	}
	stmt += ` ORDER BY m.version DESC LIMIT 1`

	row := q.db.QueryRowContext(ctx, stmt, args...)
	m, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest version match: %w", err)
	}
	return m, nil
}

// FindDerivedMetadata locates the derived metadata row matching the exact
// derivation key, or nil. Deriving twice for the same source and language
// reuses this row instead of inserting a duplicate.
func (q *Queries) FindDerivedMetadata(ctx context.Context, identifier string, languageID int64, creator, version string, derivedFromID int64) (*ResourceMetadata, error) {
	row := q.db.QueryRowContext(
		ctx,
		`SELECT `+metadataColumns+` FROM resource_metadata
         WHERE identifier = ? AND language_fk = ? AND creator = ? AND version = ? AND derived_from_fk = ?`,
		identifier, languageID, creator, version, derivedFromID,
	)
	m, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find derived metadata: %w", err)
	}
	return m, nil
}

// DerivativesOf lists metadata rows derived from the given row.
func (q *Queries) DerivativesOf(ctx context.Context, id int64) ([]*ResourceMetadata, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT `+metadataColumns+` FROM resource_metadata WHERE derived_from_fk = ? ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("derivatives of metadata: %w", err)
	}
	defer rows.Close()
	return collectMetadata(rows)
}

// UpdateResourceMetadata persists changes to an existing metadata row.
func (q *Queries) UpdateResourceMetadata(ctx context.Context, m *ResourceMetadata) error {
	_, err := q.db.ExecContext(
		ctx,
		`UPDATE resource_metadata
         SET conforms_to = ?, creator = ?, description = ?, format = ?, identifier = ?, issued = ?,
             language_fk = ?, modified = ?, publisher = ?, subject = ?, type = ?, title = ?,
             version = ?, path = ?, derived_from_fk = ?
         WHERE id = ?`,
		m.ConformsTo, m.Creator, m.Description, m.Format, m.Identifier, m.Issued,
		m.LanguageID, m.Modified, m.Publisher, m.Subject, m.Type, m.Title,
		m.Version, m.Path, nullableID(m.DerivedFromID), m.ID,
	)
	if err != nil {
		return fmt.Errorf("update resource metadata: %w", err)
	}
	return nil
}

// DeleteResourceMetadata removes a metadata row; rc links and owned
// collections cascade.
func (q *Queries) DeleteResourceMetadata(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM resource_metadata WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete resource metadata: %w", err)
	}
	return nil
}

// AddRCLink records the symmetric relation between two containers. The pair
// is stored as (min, max) and inserted with OR IGNORE, so adding an existing
// link is a no-op rather than an error.
func (q *Queries) AddRCLink(ctx context.Context, a, b int64) error {
	lo, hi := orderedPair(a, b)
	if _, err := q.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO rc_link (rc1_fk, rc2_fk) VALUES (?, ?)`,
		lo, hi,
	); err != nil {
		return fmt.Errorf("add rc link: %w", err)
	}
	return nil
}

// RemoveRCLink deletes the symmetric relation; deleting an absent pair is a
// no-op.
func (q *Queries) RemoveRCLink(ctx context.Context, a, b int64) error {
	lo, hi := orderedPair(a, b)
	if _, err := q.db.ExecContext(
		ctx,
		`DELETE FROM rc_link WHERE rc1_fk = ? AND rc2_fk = ?`,
		lo, hi,
	); err != nil {
		return fmt.Errorf("remove rc link: %w", err)
	}
	return nil
}

// LinkedResourceMetadata returns the metadata rows related to the given one
// through rc links, on either side of the canonical pair.
func (q *Queries) LinkedResourceMetadata(ctx context.Context, id int64) ([]*ResourceMetadata, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT `+prefixedMetadataColumns+`
         FROM rc_link rl
         JOIN resource_metadata m ON m.id = CASE WHEN rl.rc1_fk = ? THEN rl.rc2_fk ELSE rl.rc1_fk END
         WHERE rl.rc1_fk = ? OR rl.rc2_fk = ?
         ORDER BY m.id`,
		id, id, id,
	)
	if err != nil {
		return nil, fmt.Errorf("linked resource metadata: %w", err)
	}
	defer rows.Close()
	return collectMetadata(rows)
}

func orderedPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

const prefixedMetadataColumns = "m.id, m.conforms_to, m.creator, m.description, m.format, m.identifier, m.issued, m.language_fk, m.modified, m.publisher, m.subject, m.type, m.title, m.version, m.path, m.derived_from_fk"

func scanMetadata(scanner interface{ Scan(dest ...any) error }) (*ResourceMetadata, error) {
	var (
		m           ResourceMetadata
		derivedFrom sql.NullInt64
	)
	if err := scanner.Scan(
		&m.ID, &m.ConformsTo, &m.Creator, &m.Description, &m.Format, &m.Identifier, &m.Issued,
		&m.LanguageID, &m.Modified, &m.Publisher, &m.Subject, &m.Type, &m.Title,
		&m.Version, &m.Path, &derivedFrom,
	); err != nil {
		return nil, err
	}
	m.DerivedFromID = derivedFrom.Int64
	return &m, nil
}

func collectMetadata(rows *sql.Rows) ([]*ResourceMetadata, error) {
	var out []*ResourceMetadata
	for rows.Next() {
		m, err := scanMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource metadata: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
