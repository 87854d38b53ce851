package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"canticle/internal/store"
)

func TestCollectionByAnchor(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	meta := seedMetadata(t, st, "en", "ulb", "door43", "3", 0)
	other := seedMetadata(t, st, "en", "tn", "door43", "3", 0)

	id, err := st.InsertCollection(ctx, &store.Collection{
		Slug:       "jas_1",
		Label:      "chapter",
		MetadataID: meta.ID,
	})
	if err != nil {
		t.Fatalf("InsertCollection: %v", err)
	}

	found, err := st.CollectionByAnchor(ctx, "jas_1", "chapter", meta.ID)
	if err != nil {
		t.Fatalf("CollectionByAnchor: %v", err)
	}
	if found == nil || found.ID != id {
		t.Fatalf("anchor lookup = %+v, want id %d", found, id)
	}

	// Same slug and label under a different container must not match.
	miss, err := st.CollectionByAnchor(ctx, "jas_1", "chapter", other.ID)
	if err != nil {
		t.Fatalf("CollectionByAnchor miss: %v", err)
	}
	if miss != nil {
		t.Fatalf("anchor matched across containers: %+v", miss)
	}
}

func TestChildCollectionsOrderedBySort(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	meta := seedMetadata(t, st, "en", "ulb", "door43", "3", 0)

	rootID, err := st.InsertCollection(ctx, &store.Collection{Slug: "jas", Label: "project", MetadataID: meta.ID})
	if err != nil {
		t.Fatalf("InsertCollection root: %v", err)
	}
	for _, sort := range []int64{3, 1, 2} {
		_, err := st.InsertCollection(ctx, &store.Collection{
			ParentID:   rootID,
			Slug:       "jas_ch",
			Label:      "chapter",
			Sort:       sort,
			MetadataID: meta.ID,
		})
		if err != nil {
			t.Fatalf("InsertCollection child: %v", err)
		}
	}

	children, err := st.ChildCollections(ctx, rootID)
	if err != nil {
		t.Fatalf("ChildCollections: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("len(children) = %d, want 3", len(children))
	}
	for i, child := range children {
		if child.Sort != int64(i+1) {
			t.Fatalf("children out of order: %v", children)
		}
	}
}

func TestProjectCollectionsSplitsSourceAndDerived(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	meta := seedMetadata(t, st, "en", "ulb", "door43", "3", 0)

	sourceID, err := st.InsertCollection(ctx, &store.Collection{Slug: "jas", Label: "project", MetadataID: meta.ID})
	if err != nil {
		t.Fatalf("InsertCollection source: %v", err)
	}
	derivedID, err := st.InsertCollection(ctx, &store.Collection{
		SourceID:   sourceID,
		Slug:       "jas",
		Label:      "project",
		MetadataID: meta.ID,
	})
	if err != nil {
		t.Fatalf("InsertCollection derived: %v", err)
	}

	sources, err := st.ProjectCollections(ctx, false)
	if err != nil {
		t.Fatalf("ProjectCollections(false): %v", err)
	}
	if len(sources) != 1 || sources[0].ID != sourceID {
		t.Fatalf("source projects = %+v, want only id %d", sources, sourceID)
	}

	derived, err := st.ProjectCollections(ctx, true)
	if err != nil {
		t.Fatalf("ProjectCollections(true): %v", err)
	}
	if len(derived) != 1 || derived[0].ID != derivedID {
		t.Fatalf("derived projects = %+v, want only id %d", derived, derivedID)
	}
	if derived[0].SourceID != sourceID {
		t.Fatalf("derived project SourceID = %d, want %d", derived[0].SourceID, sourceID)
	}
}

func TestRootSourceCollectionsExcludeDerivedAndNested(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	meta := seedMetadata(t, st, "en", "ulb", "door43", "3", 0)

	rootID, err := st.InsertCollection(ctx, &store.Collection{Slug: "jas", Label: "project", Sort: 1, MetadataID: meta.ID})
	if err != nil {
		t.Fatalf("InsertCollection root: %v", err)
	}
	if _, err := st.InsertCollection(ctx, &store.Collection{
		ParentID:   rootID,
		Slug:       "jas_1",
		Label:      "chapter",
		MetadataID: meta.ID,
	}); err != nil {
		t.Fatalf("InsertCollection child: %v", err)
	}
	if _, err := st.InsertCollection(ctx, &store.Collection{
		SourceID:   rootID,
		Slug:       "jas",
		Label:      "project",
		MetadataID: meta.ID,
	}); err != nil {
		t.Fatalf("InsertCollection derived: %v", err)
	}

	roots, err := st.RootSourceCollections(ctx)
	if err != nil {
		t.Fatalf("RootSourceCollections: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != rootID {
		t.Fatalf("root source collections = %+v, want only id %d", roots, rootID)
	}
}

func TestUpdateCollectionRewritesRow(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	meta := seedMetadata(t, st, "en", "ulb", "door43", "3", 0)

	parentID, err := st.InsertCollection(ctx, &store.Collection{Slug: "jas", Label: "project", MetadataID: meta.ID})
	if err != nil {
		t.Fatalf("InsertCollection parent: %v", err)
	}
	id, err := st.InsertCollection(ctx, &store.Collection{Slug: "jas_1", Label: "chapter", Sort: 1, MetadataID: meta.ID})
	if err != nil {
		t.Fatalf("InsertCollection: %v", err)
	}

	updated := &store.Collection{
		ID:         id,
		ParentID:   parentID,
		Slug:       "jas_1",
		Title:      "James 1",
		Label:      "chapter",
		Sort:       2,
		MetadataID: meta.ID,
	}
	if err := st.UpdateCollection(ctx, updated); err != nil {
		t.Fatalf("UpdateCollection: %v", err)
	}

	got, err := st.CollectionByID(ctx, id)
	if err != nil {
		t.Fatalf("CollectionByID: %v", err)
	}
	if got.ParentID != parentID || got.Title != "James 1" || got.Sort != 2 {
		t.Fatalf("updated collection = %+v", got)
	}
}

func TestTouchCollectionStampsModified(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	meta := seedMetadata(t, st, "en", "ulb", "door43", "3", 0)

	id, err := st.InsertCollection(ctx, &store.Collection{Slug: "jas", Label: "project", MetadataID: meta.ID})
	if err != nil {
		t.Fatalf("InsertCollection: %v", err)
	}
	if err := st.TouchCollection(ctx, id); err != nil {
		t.Fatalf("TouchCollection: %v", err)
	}

	c, err := st.CollectionByID(ctx, id)
	if err != nil {
		t.Fatalf("CollectionByID: %v", err)
	}
	if _, err := time.Parse(time.RFC3339Nano, c.ModifiedAt); err != nil {
		t.Fatalf("ModifiedAt %q is not RFC3339Nano: %v", c.ModifiedAt, err)
	}
}

func TestDeleteCollectionCascades(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	meta := seedMetadata(t, st, "en", "ulb", "door43", "3", 0)

	rootID, err := st.InsertCollection(ctx, &store.Collection{Slug: "jas", Label: "project", MetadataID: meta.ID})
	if err != nil {
		t.Fatalf("InsertCollection root: %v", err)
	}
	chapterID, err := st.InsertCollection(ctx, &store.Collection{
		ParentID:   rootID,
		Slug:       "jas_1",
		Label:      "chapter",
		MetadataID: meta.ID,
	})
	if err != nil {
		t.Fatalf("InsertCollection chapter: %v", err)
	}
	contentID, err := st.InsertContent(ctx, &store.Content{
		CollectionID: chapterID,
		Sort:         1,
		Start:        1,
		Text:         "jas 1:1",
		Type:         store.ContentTypeText,
	})
	if err != nil {
		t.Fatalf("InsertContent: %v", err)
	}

	if err := st.DeleteCollection(ctx, rootID); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	if _, err := st.CollectionByID(ctx, chapterID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("chapter survived cascade: err = %v", err)
	}
	if _, err := st.ContentByID(ctx, contentID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("content survived cascade: err = %v", err)
	}
}
