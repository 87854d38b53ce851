// Package subtree aggregates, for every collection in a tree, the set of
// helper containers reachable anywhere in its subtree. The traversal is pure
// and returns an explicit result; persisting it into the store cache is a
// separate step so callers control the transaction.
package subtree

import (
	"context"
	"fmt"
	"sort"

	"canticle/internal/store"
)

// Source supplies the tree structure and per-node link facts Compute needs.
type Source interface {
	ChildCollectionIDs(ctx context.Context, collectionID int64) ([]int64, error)
	CollectionResourceIDs(ctx context.Context, collectionID int64) ([]int64, error)
	ContentResourceIDs(ctx context.Context, collectionID int64) ([]int64, error)
}

// Result maps each visited collection to the helper container ids reachable
// in its subtree.
type Result struct {
	byCollection map[int64]map[int64]struct{}
}

// IDs returns the sorted helper container ids for a collection.
func (r *Result) IDs(collectionID int64) []int64 {
	set := r.byCollection[collectionID]
	if len(set) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Pairs flattens the result into cache rows, ordered for deterministic
// persistence.
func (r *Result) Pairs() []store.SubtreePair {
	collections := make([]int64, 0, len(r.byCollection))
	for id := range r.byCollection {
		collections = append(collections, id)
	}
	sort.Slice(collections, func(i, j int) bool { return collections[i] < collections[j] })

	var pairs []store.SubtreePair
	for _, collectionID := range collections {
		for _, metadataID := range r.IDs(collectionID) {
			pairs = append(pairs, store.SubtreePair{CollectionID: collectionID, MetadataID: metadataID})
		}
	}
	return pairs
}

// Compute walks the subtree rooted at rootID post-order. Each node's set is
// the union of its children's sets, the containers linked to the node
// itself, and the containers linked to its content.
func Compute(ctx context.Context, src Source, rootID int64) (*Result, error) {
	result := &Result{byCollection: make(map[int64]map[int64]struct{})}
	if _, err := accumulate(ctx, src, rootID, result); err != nil {
		return nil, err
	}
	return result, nil
}

func accumulate(ctx context.Context, src Source, collectionID int64, result *Result) (map[int64]struct{}, error) {
	set := make(map[int64]struct{})

	children, err := src.ChildCollectionIDs(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("subtree children of %d: %w", collectionID, err)
	}
	for _, childID := range children {
		childSet, err := accumulate(ctx, src, childID, result)
		if err != nil {
			return nil, err
		}
		for id := range childSet {
			set[id] = struct{}{}
		}
	}

	own, err := src.CollectionResourceIDs(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("subtree collection links of %d: %w", collectionID, err)
	}
	for _, id := range own {
		set[id] = struct{}{}
	}

	content, err := src.ContentResourceIDs(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("subtree content links of %d: %w", collectionID, err)
	}
	for _, id := range content {
		set[id] = struct{}{}
	}

	result.byCollection[collectionID] = set
	return set, nil
}

// Persist writes the result into the store cache. Insertion is idempotent,
// so refreshing an unchanged tree leaves the cache as it was.
func Persist(ctx context.Context, q *store.Queries, result *Result) error {
	return q.AddSubtreePairs(ctx, result.Pairs())
}

// Refresh computes and persists the subtree rooted at rootID using the
// caller's transaction handle.
func Refresh(ctx context.Context, q *store.Queries, rootID int64) error {
	result, err := Compute(ctx, storeSource{q}, rootID)
	if err != nil {
		return err
	}
	return Persist(ctx, q, result)
}

// storeSource adapts store.Queries to the Source interface.
type storeSource struct {
	q *store.Queries
}

func (s storeSource) ChildCollectionIDs(ctx context.Context, collectionID int64) ([]int64, error) {
	children, err := s.q.ChildCollections(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(children))
	for _, child := range children {
		ids = append(ids, child.ID)
	}
	return ids, nil
}

func (s storeSource) CollectionResourceIDs(ctx context.Context, collectionID int64) ([]int64, error) {
	return s.q.CollectionResourceMetadataIDs(ctx, collectionID)
}

func (s storeSource) ContentResourceIDs(ctx context.Context, collectionID int64) ([]int64, error) {
	return s.q.ContentResourceMetadataIDs(ctx, collectionID)
}
