package store_test

import (
	"context"
	"testing"

	"canticle/internal/store"
)

func TestUpdateContentRewritesRow(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	meta := seedMetadata(t, st, "en", "ulb", "door43", "1", 0)

	colID, err := st.InsertCollection(ctx, &store.Collection{Slug: "jas_1", Label: "chapter", MetadataID: meta.ID})
	if err != nil {
		t.Fatalf("InsertCollection: %v", err)
	}
	id, err := st.InsertContent(ctx, &store.Content{
		CollectionID: colID,
		Sort:         1,
		Start:        1,
		Label:        "verse",
		Text:         "first draft",
		Type:         store.ContentTypeText,
	})
	if err != nil {
		t.Fatalf("InsertContent: %v", err)
	}

	updated := &store.Content{
		ID:           id,
		CollectionID: colID,
		Sort:         3,
		Start:        2,
		Label:        "verse",
		Text:         "revised draft",
		Format:       "usfm",
		Type:         store.ContentTypeText,
	}
	if err := st.UpdateContent(ctx, updated); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}

	got, err := st.ContentByID(ctx, id)
	if err != nil {
		t.Fatalf("ContentByID: %v", err)
	}
	if got.Sort != 3 || got.Start != 2 || got.Text != "revised draft" || got.Format != "usfm" {
		t.Fatalf("updated content = %+v", got)
	}
	if got.CollectionID != colID {
		t.Fatalf("content moved collections: %d", got.CollectionID)
	}
}
