package derivation

import (
	"context"

	"canticle/internal/store"
)

// StructuralKey identifies a content row by its position and role within a
// chapter, independent of store-assigned ids. Two independently inserted
// trees correlate through this key, never through insertion order.
type StructuralKey struct {
	Sort int64
	Type store.ContentType
}

// KeyOf extracts the structural key of a content row.
func KeyOf(c *store.Content) StructuralKey {
	return StructuralKey{Sort: c.Sort, Type: c.Type}
}

// ContentPair matches one derived content row to its source.
type ContentPair struct {
	DerivedID int64
	SourceID  int64
}

// PairContent matches derived rows to the source rows sharing their
// structural key. Derived rows with no counterpart are skipped; when a key
// appears more than once on the source side the first occurrence wins.
func PairContent(derived, source []*store.Content) []ContentPair {
	bySourceKey := make(map[StructuralKey]int64, len(source))
	for _, row := range source {
		key := KeyOf(row)
		if _, ok := bySourceKey[key]; !ok {
			bySourceKey[key] = row.ID
		}
	}

	var pairs []ContentPair
	for _, row := range derived {
		sourceID, ok := bySourceKey[KeyOf(row)]
		if !ok {
			continue
		}
		pairs = append(pairs, ContentPair{DerivedID: row.ID, SourceID: sourceID})
	}
	return pairs
}

// pairDerivedChildren records content_derivative edges for every chapter
// under the derived project, pairing each derived row with its source by
// structural key.
func pairDerivedChildren(ctx context.Context, q *store.Queries, derivedProjectID int64) error {
	chapters, err := q.ChildCollections(ctx, derivedProjectID)
	if err != nil {
		return err
	}
	for _, chapter := range chapters {
		if chapter.SourceID == 0 {
			continue
		}
		derived, err := q.ContentForCollection(ctx, chapter.ID)
		if err != nil {
			return err
		}
		source, err := q.ContentForCollection(ctx, chapter.SourceID)
		if err != nil {
			return err
		}
		for _, pair := range PairContent(derived, source) {
			if err := q.LinkDerivative(ctx, pair.DerivedID, pair.SourceID); err != nil {
				return err
			}
		}
	}
	return nil
}
