package store

import (
	"context"
	"fmt"
	"time"
)

// CopyChildCollections duplicates the direct children of sourceParentID under
// derivedParentID. Each copy records its origin in source_fk and is owned by
// derivedMetadataID.
func (q *Queries) CopyChildCollections(ctx context.Context, sourceParentID, derivedParentID, derivedMetadataID int64) error {
	if _, err := q.db.ExecContext(
		ctx,
		`INSERT INTO collection (parent_fk, source_fk, slug, title, label, sort, dublin_core_fk, modified_ts)
         SELECT ?, id, slug, title, label, sort, ?, ?
         FROM collection WHERE parent_fk = ?`,
		derivedParentID,
		derivedMetadataID,
		time.Now().UTC().Format(time.RFC3339Nano),
		sourceParentID,
	); err != nil {
		return fmt.Errorf("copy child collections: %w", err)
	}
	return nil
}

// CopyContentIntoDerivedChildren fills each child of derivedParentID with
// copies of its source collection's content. Structure columns (sort, start,
// label, format, type) carry over; takes and text do not, since the copy is
// an empty shell awaiting translation.
func (q *Queries) CopyContentIntoDerivedChildren(ctx context.Context, derivedParentID int64) error {
	if _, err := q.db.ExecContext(
		ctx,
		`INSERT INTO content (collection_fk, sort, start, label, format, type_fk)
         SELECT dc.id, c.sort, c.start, c.label, c.format, c.type_fk
         FROM collection dc
         JOIN content c ON c.collection_fk = dc.source_fk
         WHERE dc.parent_fk = ?`,
		derivedParentID,
	); err != nil {
		return fmt.Errorf("copy content into derived children: %w", err)
	}
	return nil
}

// CopyResourceLinks recreates, for the tree under derivedProjectID, the
// links a helper container holds into the source tree. Both the helper row
// and its target resolve through content_derivative (or through source_fk
// for collection targets), restricted to this derivation so pairs from other
// derivations of the same source do not leak in. Rows where either side has
// no derived counterpart are skipped.
func (q *Queries) CopyResourceLinks(ctx context.Context, sourceMetadataID, derivedMetadataID, derivedProjectID int64) error {
	if _, err := q.db.ExecContext(
		ctx,
		`INSERT INTO resource_link (resource_content_fk, content_fk, collection_fk, dublin_core_fk)
         SELECT rcd.content_fk, tcd.content_fk, dcol.id, ?
         FROM resource_link rl
         JOIN content_derivative rcd ON rcd.source_fk = rl.resource_content_fk
         JOIN content dhelp ON dhelp.id = rcd.content_fk
         JOIN collection dhch ON dhch.id = dhelp.collection_fk AND dhch.parent_fk = ?
         LEFT JOIN content_derivative tcd ON tcd.source_fk = rl.content_fk
              AND tcd.content_fk IN (
                  SELECT c.id FROM content c
                  JOIN collection ch ON ch.id = c.collection_fk
                  WHERE ch.parent_fk = ?
              )
         LEFT JOIN collection dcol ON dcol.source_fk = rl.collection_fk AND dcol.parent_fk = ?
         WHERE rl.dublin_core_fk = ?
           AND (tcd.content_fk IS NOT NULL OR dcol.id IS NOT NULL)`,
		derivedMetadataID,
		derivedProjectID,
		derivedProjectID,
		derivedProjectID,
		sourceMetadataID,
	); err != nil {
		return fmt.Errorf("copy resource links: %w", err)
	}
	return nil
}
