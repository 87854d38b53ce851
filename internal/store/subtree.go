package store

import (
	"context"
	"fmt"
)

// AddSubtreeResources records helper containers as reachable from the given
// collection. The composite primary key plus OR IGNORE makes repeated
// aggregation runs idempotent.
func (q *Queries) AddSubtreeResources(ctx context.Context, collectionID int64, metadataIDs []int64) error {
	for _, metadataID := range metadataIDs {
		if _, err := q.db.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO subtree_has_resource (collection_fk, dublin_core_fk) VALUES (?, ?)`,
			collectionID, metadataID,
		); err != nil {
			return fmt.Errorf("add subtree resource: %w", err)
		}
	}
	return nil
}

// AddSubtreePairs records aggregation output in one statement, ignoring
// pairs already present. Rows cached for collections outside the given
// pairs are never touched, so refreshing one tree cannot disturb another.
func (q *Queries) AddSubtreePairs(ctx context.Context, pairs []SubtreePair) error {
	if len(pairs) == 0 {
		return nil
	}
	stmt := `INSERT OR IGNORE INTO subtree_has_resource (collection_fk, dublin_core_fk) VALUES `
	args := make([]any, 0, len(pairs)*2)
	for i, pair := range pairs {
		if i > 0 {
			stmt += ", "
		}
		stmt += "(?, ?)"
		args = append(args, pair.CollectionID, pair.MetadataID)
	}
	if _, err := q.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("add subtree pairs: %w", err)
	}
	return nil
}

// SubtreeResourceIDs returns the helper container ids cached for a
// collection, ordered by id.
func (q *Queries) SubtreeResourceIDs(ctx context.Context, collectionID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`SELECT dublin_core_fk FROM subtree_has_resource WHERE collection_fk = ? ORDER BY dublin_core_fk`,
		collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("subtree resource ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subtree resource id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CollectionIDsInSubtree returns every collection id in the subtree rooted at
// the given collection, root included.
func (q *Queries) CollectionIDsInSubtree(ctx context.Context, rootID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(
		ctx,
		`WITH RECURSIVE subtree(id) AS (
             SELECT id FROM collection WHERE id = ?
             UNION ALL
             SELECT c.id FROM collection c JOIN subtree s ON c.parent_fk = s.id
         )
         SELECT id FROM subtree`,
		rootID,
	)
	if err != nil {
		return nil, fmt.Errorf("collection ids in subtree: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subtree collection id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ContentResourceMetadataIDs returns the distinct helper container ids linked
// to content rows directly under the given collection.
func (q *Queries) ContentResourceMetadataIDs(ctx context.Context, collectionID int64) ([]int64, error) {
	return q.metadataIDsWhere(
		ctx,
		`SELECT DISTINCT rl.dublin_core_fk
         FROM resource_link rl
         JOIN content c ON c.id = rl.content_fk
         WHERE c.collection_fk = ?
         ORDER BY rl.dublin_core_fk`,
		collectionID,
	)
}

// CollectionResourceMetadataIDs returns the distinct helper container ids
// linked to the collection row itself.
func (q *Queries) CollectionResourceMetadataIDs(ctx context.Context, collectionID int64) ([]int64, error) {
	return q.metadataIDsWhere(
		ctx,
		`SELECT DISTINCT rl.dublin_core_fk
         FROM resource_link rl
         WHERE rl.collection_fk = ?
         ORDER BY rl.dublin_core_fk`,
		collectionID,
	)
}

func (q *Queries) metadataIDsWhere(ctx context.Context, stmt string, arg int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, stmt, arg)
	if err != nil {
		return nil, fmt.Errorf("metadata ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan metadata id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
