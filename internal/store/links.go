package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsertResourceLink attaches helper content to its target. The link must
// carry a target built by LinkToContent or LinkToCollection.
func (q *Queries) InsertResourceLink(ctx context.Context, l *ResourceLink) (int64, error) {
	if l.ID != 0 {
		return 0, fmt.Errorf("insert resource link: %w", ErrEntityHasID)
	}
	contentID, _ := l.Target.ContentID()
	collectionID, _ := l.Target.CollectionID()
	if contentID == 0 && collectionID == 0 {
		return 0, errors.New("insert resource link: target not set")
	}
	res, err := q.db.ExecContext(
		ctx,
		`INSERT INTO resource_link (resource_content_fk, content_fk, collection_fk, dublin_core_fk)
         VALUES (?, ?, ?, ?)`,
		l.ResourceContentID, nullableID(contentID), nullableID(collectionID), l.MetadataID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert resource link: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resource link insert id: %w", err)
	}
	return id, nil
}

// ResourceLinksForContent returns the links targeting a content row.
func (q *Queries) ResourceLinksForContent(ctx context.Context, contentID int64) ([]*ResourceLink, error) {
	return q.resourceLinksWhere(ctx, `content_fk = ?`, contentID)
}

// ResourceLinksForCollection returns the links targeting a collection row.
func (q *Queries) ResourceLinksForCollection(ctx context.Context, collectionID int64) ([]*ResourceLink, error) {
	return q.resourceLinksWhere(ctx, `collection_fk = ?`, collectionID)
}

func (q *Queries) resourceLinksWhere(ctx context.Context, clause string, arg int64) ([]*ResourceLink, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT id, resource_content_fk, content_fk, collection_fk, dublin_core_fk
         FROM resource_link WHERE `+clause+` ORDER BY id`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("resource links: %w", err)
	}
	defer rows.Close()

	var out []*ResourceLink
	for rows.Next() {
		var (
			l            ResourceLink
			contentID    sql.NullInt64
			collectionID sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.ResourceContentID, &contentID, &collectionID, &l.MetadataID); err != nil {
			return nil, fmt.Errorf("scan resource link: %w", err)
		}
		l.Target = linkTargetFromColumns(contentID.Int64, collectionID.Int64)
		out = append(out, &l)
	}
	return out, rows.Err()
}

// DeleteResourceLink removes a single link row.
func (q *Queries) DeleteResourceLink(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM resource_link WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete resource link: %w", err)
	}
	return nil
}

// ResourcesFor returns the helper content attached to the given target,
// scoped to one helper container and ordered the way a reader expects: by the
// verse range they annotate, then by sort within it.
func (q *Queries) ResourcesFor(ctx context.Context, target LinkTarget, metadataID int64) ([]*Content, error) {
	clause := `rl.content_fk = ?`
	arg, ok := target.ContentID()
	if !ok {
		clause = `rl.collection_fk = ?`
		arg, _ = target.CollectionID()
	}
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT c.id, c.collection_fk, c.sort, c.start, c.label, c.selected_take_fk, c.text, c.format, c.type_fk
         FROM resource_link rl
         JOIN content c ON c.id = rl.resource_content_fk
         WHERE `+clause+` AND rl.dublin_core_fk = ?
         ORDER BY c.start, c.sort`,
		arg, metadataID,
	)
	if err != nil {
		return nil, fmt.Errorf("resources for target: %w", err)
	}
	defer rows.Close()
	return q.collectContent(rows)
}

// ResourceMetadataForContent returns the distinct helper containers with
// links targeting the content row.
func (q *Queries) ResourceMetadataForContent(ctx context.Context, contentID int64) ([]*ResourceMetadata, error) {
	return q.linkMetadataWhere(ctx, `rl.content_fk = ?`, contentID)
}

// ResourceMetadataForCollection returns the distinct helper containers with
// links targeting the collection row itself, not its descendants.
func (q *Queries) ResourceMetadataForCollection(ctx context.Context, collectionID int64) ([]*ResourceMetadata, error) {
	return q.linkMetadataWhere(ctx, `rl.collection_fk = ?`, collectionID)
}

func (q *Queries) linkMetadataWhere(ctx context.Context, clause string, arg int64) ([]*ResourceMetadata, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT DISTINCT `+prefixedMetadataColumns+`
         FROM resource_link rl
         JOIN resource_metadata m ON m.id = rl.dublin_core_fk
         WHERE `+clause+`
         ORDER BY m.id`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("resource metadata for links: %w", err)
	}
	defer rows.Close()
	return collectMetadata(rows)
}

// ResourceMetadataForSubtree reads the aggregated helper containers for a
// collection from the subtree cache.
func (q *Queries) ResourceMetadataForSubtree(ctx context.Context, collectionID int64) ([]*ResourceMetadata, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT `+prefixedMetadataColumns+`
         FROM subtree_has_resource shr
         JOIN resource_metadata m ON m.id = shr.dublin_core_fk
         WHERE shr.collection_fk = ?
         ORDER BY m.id`,
		collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("resource metadata for subtree: %w", err)
	}
	defer rows.Close()
	return collectMetadata(rows)
}

// linkableVersesQuery composes the candidate query for verse-level matching:
// every unlinked helper row in the collection joined to the main-type row
// sharing its start position, projected as (help id, main id, metadata id).
// Pure query composition; nothing executes until a caller consumes it.
func linkableVersesQuery(collectionID, metadataID int64, helpIDs, mainIDs []int64) (string, []any) {
	stmt := `SELECT help.id, verse.id, ?
         FROM content help
         JOIN content verse
           ON verse.collection_fk = help.collection_fk
          AND verse.start = help.start
         WHERE help.collection_fk = ?
           AND help.type_fk IN (` + placeholders(len(helpIDs)) + `)
           AND verse.type_fk IN (` + placeholders(len(mainIDs)) + `)
           AND help.id NOT IN (SELECT resource_content_fk FROM resource_link)`
	return stmt, flattenArgs(metadataID, collectionID, helpIDs, mainIDs)
}

// linkableChaptersQuery composes the candidate query for chapter-level
// matching: every unlinked helper row at start 0, projected as
// (help id, collection id, metadata id).
func linkableChaptersQuery(collectionID, metadataID int64, helpIDs []int64) (string, []any) {
	stmt := `SELECT help.id, help.collection_fk, ?
         FROM content help
         WHERE help.collection_fk = ?
           AND help.start = 0
           AND help.type_fk IN (` + placeholders(len(helpIDs)) + `)
           AND help.id NOT IN (SELECT resource_content_fk FROM resource_link)`
	return stmt, flattenArgs(metadataID, collectionID, helpIDs, nil)
}

// LinkableVerses streams the verse-level candidate set without side effects:
// one row per (help content id, main content id, metadata id) that a link
// insert would create. The caller owns the returned rows.
func (q *Queries) LinkableVerses(ctx context.Context, collectionID int64, mainTypes, helpTypes []ContentType, metadataID int64) (*sql.Rows, error) {
	helpIDs, err := q.types.idsOf(helpTypes)
	if err != nil {
		return nil, err
	}
	mainIDs, err := q.types.idsOf(mainTypes)
	if err != nil {
		return nil, err
	}
	stmt, args := linkableVersesQuery(collectionID, metadataID, helpIDs, mainIDs)
	rows, err := q.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("linkable verses: %w", err)
	}
	return rows, nil
}

// LinkableChapters streams the chapter-level candidate set without side
// effects: one row per (help content id, collection id, metadata id).
func (q *Queries) LinkableChapters(ctx context.Context, collectionID int64, helpTypes []ContentType, metadataID int64) (*sql.Rows, error) {
	helpIDs, err := q.types.idsOf(helpTypes)
	if err != nil {
		return nil, err
	}
	stmt, args := linkableChaptersQuery(collectionID, metadataID, helpIDs)
	rows, err := q.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("linkable chapters: %w", err)
	}
	return rows, nil
}

// LinkVerseResources inserts a link for every verse-level candidate in one
// INSERT..SELECT, so the candidate set streams inside SQLite and is never
// materialized in Go. Helper rows already holding a link are not candidates,
// so running the matcher twice adds nothing. Returns the number of links
// created.
func (q *Queries) LinkVerseResources(ctx context.Context, chapterCollectionID, metadataID int64) (int64, error) {
	helpIDs, err := q.types.idsOf(HelpContentTypes)
	if err != nil {
		return 0, err
	}
	mainIDs, err := q.types.idsOf(PrimaryContentTypes)
	if err != nil {
		return 0, err
	}
	stmt, args := linkableVersesQuery(chapterCollectionID, metadataID, helpIDs, mainIDs)
	res, err := q.db.ExecContext(
		ctx,
		`INSERT INTO resource_link (resource_content_fk, content_fk, dublin_core_fk) `+stmt,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("link verse resources: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("link verse resources affected: %w", err)
	}
	return n, nil
}

// LinkChapterResources inserts a link for every chapter-level candidate.
// Returns the number of links created.
func (q *Queries) LinkChapterResources(ctx context.Context, chapterCollectionID, metadataID int64) (int64, error) {
	helpIDs, err := q.types.idsOf(HelpContentTypes)
	if err != nil {
		return 0, err
	}
	stmt, args := linkableChaptersQuery(chapterCollectionID, metadataID, helpIDs)
	res, err := q.db.ExecContext(
		ctx,
		`INSERT INTO resource_link (resource_content_fk, collection_fk, dublin_core_fk) `+stmt,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("link chapter resources: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("link chapter resources affected: %w", err)
	}
	return n, nil
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	out := "?"
	for i := 1; i < n; i++ {
		out += ", ?"
	}
	return out
}

func flattenArgs(metadataID, collectionID int64, helpIDs, primaryIDs []int64) []any {
	args := []any{metadataID, collectionID}
	for _, id := range helpIDs {
		args = append(args, id)
	}
	for _, id := range primaryIDs {
		args = append(args, id)
	}
	return args
}
