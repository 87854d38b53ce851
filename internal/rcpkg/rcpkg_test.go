package rcpkg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"canticle/internal/store"
)

func TestParseRelation(t *testing.T) {
	rel, err := ParseRelation("en/tn")
	if err != nil {
		t.Fatalf("ParseRelation returned error: %v", err)
	}
	if rel.Language != "en" || rel.Identifier != "tn" {
		t.Fatalf("unexpected relation: %+v", rel)
	}

	for _, raw := range []string{"", "en", "/tn", "en/"} {
		if _, err := ParseRelation(raw); err == nil {
			t.Errorf("ParseRelation(%q) accepted malformed input", raw)
		}
	}
}

func TestPackageValidate(t *testing.T) {
	pkg := &Package{
		Type:     TypeBook,
		Language: Language{Slug: "en"},
		Metadata: Metadata{Identifier: "ulb"},
		Root: NewCollectionNode(CollectionSpec{Slug: "jas", Label: "project"},
			NewCollectionNode(CollectionSpec{Slug: "jas_1", Label: "chapter", Sort: 1},
				NewContentNode(ContentSpec{Sort: 1, Start: 1, Label: "verse", Type: store.ContentTypeText}),
			),
		),
	}
	if err := pkg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	bad := &Package{Type: ContainerType("audio"), Language: Language{Slug: "en"}, Metadata: Metadata{Identifier: "x"}, Root: pkg.Root}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown container type")
	}

	leafWithChildren := &Package{
		Type:     TypeBook,
		Language: Language{Slug: "en"},
		Metadata: Metadata{Identifier: "x"},
		Root: &Node{
			Content:  &ContentSpec{Type: store.ContentTypeText},
			Children: []*Node{NewContentNode(ContentSpec{Type: store.ContentTypeText})},
		},
	}
	if err := leafWithChildren.Validate(); err == nil {
		t.Fatal("expected error for content leaf with children")
	}
}

func TestDirWriterCreateAndAddProject(t *testing.T) {
	root := t.TempDir()
	w := NewDirWriter(root, nil)
	ctx := context.Background()

	m := &Manifest{
		DublinCore: DublinCore{
			Identifier: "ulb",
			Language:   ManifestLanguage{Identifier: "fr", Title: "French", Direction: "ltr"},
			Title:      "Unlocked Literal Bible",
			Version:    "12",
		},
	}
	dir, err := w.CreateContainer(ctx, m)
	if err != nil {
		t.Fatalf("CreateContainer returned error: %v", err)
	}
	if filepath.Base(dir) != "fr_ulb" {
		t.Fatalf("unexpected container dir: %s", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, ManifestFilename)); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}

	again, err := w.CreateContainer(ctx, m)
	if err != nil {
		t.Fatalf("CreateContainer on existing dir returned error: %v", err)
	}
	if again != dir {
		t.Fatalf("expected existing container path %s, got %s", dir, again)
	}

	entry := ManifestProject{Identifier: "jas", Title: "James", Path: "./content/jas", Sort: 59}
	if err := w.AddProject(ctx, dir, entry); err != nil {
		t.Fatalf("AddProject returned error: %v", err)
	}
	// Adding the same identifier again must not duplicate the entry.
	if err := w.AddProject(ctx, dir, entry); err != nil {
		t.Fatalf("AddProject second call returned error: %v", err)
	}

	got, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest returned error: %v", err)
	}
	if len(got.Projects) != 1 {
		t.Fatalf("expected 1 project entry, got %d", len(got.Projects))
	}
	if got.Projects[0].Sort != 59 {
		t.Fatalf("unexpected project sort: %d", got.Projects[0].Sort)
	}
	if got.DublinCore.Language.Identifier != "fr" {
		t.Fatalf("unexpected manifest language: %q", got.DublinCore.Language.Identifier)
	}
}
