package derivation_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"canticle/internal/derivation"
	"canticle/internal/importer"
	"canticle/internal/rcpkg"
	"canticle/internal/store"
	"canticle/internal/testsupport"
)

type fixture struct {
	store     *store.Store
	engine    *derivation.Engine
	dir       string
	projectID int64
	bookMeta  *store.ResourceMetadata
	helpMeta  *store.ResourceMetadata
}

// seed imports a two-chapter book with helps and returns everything the
// derivation tests need.
func seed(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	im := importer.New(st, nil)

	if result, err := im.Import(ctx, testsupport.BookPackage("en", "ulb", "jas", 2, 3)); err != nil || result != importer.Success {
		t.Fatalf("book import: result=%v err=%v", result, err)
	}
	if result, err := im.Import(ctx, testsupport.HelpPackage("en", "tn", "jas", 2, 3, "en/ulb")); err != nil || result != importer.Success {
		t.Fatalf("help import: result=%v err=%v", result, err)
	}

	bookMeta, err := st.LatestVersion(ctx, "en", "ulb")
	if err != nil || bookMeta == nil {
		t.Fatalf("book metadata: %v %v", bookMeta, err)
	}
	helpMeta, err := st.LatestVersion(ctx, "en", "tn")
	if err != nil || helpMeta == nil {
		t.Fatalf("help metadata: %v %v", helpMeta, err)
	}
	roots, err := st.RootCollectionsForMetadata(ctx, bookMeta.ID)
	if err != nil || len(roots) != 1 {
		t.Fatalf("roots: %v %v", roots, err)
	}

	writer := rcpkg.NewDirWriter(cfg.Paths.ContainersDir, nil)
	return &fixture{
		store:     st,
		engine:    derivation.New(st, writer, nil),
		dir:       cfg.Paths.ContainersDir,
		projectID: roots[0].ID,
		bookMeta:  bookMeta,
		helpMeta:  helpMeta,
	}
}

func TestDeriveCopiesStructureWithoutText(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	derived, err := f.engine.Derive(ctx, derivation.Request{
		SourceProjectID: f.projectID,
		LanguageSlug:    "fr",
		LanguageName:    "French",
	})
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	if derived.Metadata.DerivedFromID != f.bookMeta.ID {
		t.Fatalf("derived metadata origin = %d, want %d", derived.Metadata.DerivedFromID, f.bookMeta.ID)
	}
	if derived.Metadata.Creator != derivation.CreatorTag {
		t.Fatalf("derived metadata creator = %q", derived.Metadata.Creator)
	}
	if derived.Project.SourceID != f.projectID {
		t.Fatalf("derived project source = %d, want %d", derived.Project.SourceID, f.projectID)
	}

	chapters, err := f.store.ChildCollections(ctx, derived.Project.ID)
	if err != nil {
		t.Fatalf("ChildCollections: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("expected 2 derived chapters, got %d", len(chapters))
	}
	for _, chapter := range chapters {
		if chapter.SourceID == 0 {
			t.Fatalf("derived chapter %s lacks a source reference", chapter.Slug)
		}
		if chapter.MetadataID != derived.Metadata.ID {
			t.Fatalf("derived chapter %s owned by %d", chapter.Slug, chapter.MetadataID)
		}
	}

	rows, err := f.store.ContentForCollection(ctx, chapters[0].ID)
	if err != nil {
		t.Fatalf("ContentForCollection: %v", err)
	}
	// Meta + 3 verses + (3 verses + chapter) x title/body helper rows.
	if len(rows) != 12 {
		t.Fatalf("expected 12 derived content rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Text != "" {
			t.Fatalf("derived row %d carries source text %q", row.ID, row.Text)
		}
		if row.SelectedTakeID != 0 {
			t.Fatalf("derived row %d carries a take", row.ID)
		}
	}
}

func TestDerivePairsContentBySortAndType(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	derived, err := f.engine.Derive(ctx, derivation.Request{SourceProjectID: f.projectID, LanguageSlug: "fr"})
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	chapters, _ := f.store.ChildCollections(ctx, derived.Project.ID)
	rows, err := f.store.ContentForCollection(ctx, chapters[1].ID)
	if err != nil {
		t.Fatalf("ContentForCollection: %v", err)
	}
	for _, row := range rows {
		sources, err := f.store.SourcesOfContent(ctx, row.ID)
		if err != nil {
			t.Fatalf("SourcesOfContent: %v", err)
		}
		if len(sources) != 1 {
			t.Fatalf("derived row sort=%d type=%s has %d sources", row.Sort, row.Type, len(sources))
		}
		src := sources[0]
		if src.Sort != row.Sort || src.Type != row.Type || src.Start != row.Start {
			t.Fatalf("pairing mismatch: derived(sort=%d type=%s) source(sort=%d type=%s)", row.Sort, row.Type, src.Sort, src.Type)
		}
	}
}

func TestDeriveCopiesHelperLinks(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	derived, err := f.engine.Derive(ctx, derivation.Request{SourceProjectID: f.projectID, LanguageSlug: "fr"})
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	derivedHelp, err := f.store.FindDerivedMetadata(ctx, f.helpMeta.Identifier, derived.Metadata.LanguageID, derivation.CreatorTag, f.helpMeta.Version, f.helpMeta.ID)
	if err != nil || derivedHelp == nil {
		t.Fatalf("derived help metadata: %v %v", derivedHelp, err)
	}

	linked, err := f.store.LinkedResourceMetadata(ctx, derived.Metadata.ID)
	if err != nil {
		t.Fatalf("LinkedResourceMetadata: %v", err)
	}
	if len(linked) != 1 || linked[0].ID != derivedHelp.ID {
		t.Fatalf("derived containers not linked: %+v", linked)
	}

	chapters, _ := f.store.ChildCollections(ctx, derived.Project.ID)
	chapterLinks, err := f.store.ResourceLinksForCollection(ctx, chapters[0].ID)
	if err != nil {
		t.Fatalf("ResourceLinksForCollection: %v", err)
	}
	if len(chapterLinks) != 2 {
		t.Fatalf("expected 2 chapter-level links, got %d", len(chapterLinks))
	}

	rows, _ := f.store.ContentForCollection(ctx, chapters[0].ID)
	for _, row := range rows {
		if row.Type != store.ContentTypeText {
			continue
		}
		links, err := f.store.ResourceLinksForContent(ctx, row.ID)
		if err != nil {
			t.Fatalf("ResourceLinksForContent: %v", err)
		}
		if len(links) != 2 {
			t.Fatalf("derived verse start=%d has %d links", row.Start, len(links))
		}
		for _, link := range links {
			if link.MetadataID != derivedHelp.ID {
				t.Fatalf("derived link owned by %d, want %d", link.MetadataID, derivedHelp.ID)
			}
		}
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	f := seed(t)
	ctx := context.Background()
	req := derivation.Request{SourceProjectID: f.projectID, LanguageSlug: "fr"}

	first, err := f.engine.Derive(ctx, req)
	if err != nil {
		t.Fatalf("first Derive: %v", err)
	}
	second, err := f.engine.Derive(ctx, req)
	if err != nil {
		t.Fatalf("second Derive: %v", err)
	}

	if first.Project.ID != second.Project.ID {
		t.Fatalf("derivation created a second project: %d vs %d", first.Project.ID, second.Project.ID)
	}
	if first.Metadata.ID != second.Metadata.ID {
		t.Fatalf("derivation created a second metadata row: %d vs %d", first.Metadata.ID, second.Metadata.ID)
	}

	all, err := f.store.AllResourceMetadata(ctx)
	if err != nil {
		t.Fatalf("AllResourceMetadata: %v", err)
	}
	// en ulb, en tn, fr ulb, fr tn.
	if len(all) != 4 {
		t.Fatalf("expected 4 metadata rows, got %d", len(all))
	}

	chapters, _ := f.store.ChildCollections(ctx, first.Project.ID)
	if len(chapters) != 2 {
		t.Fatalf("re-derivation duplicated chapters: %d", len(chapters))
	}
}

func TestDeriveWritesManifestEntry(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	derived, err := f.engine.Derive(ctx, derivation.Request{SourceProjectID: f.projectID, LanguageSlug: "fr"})
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	containerDir := filepath.Join(f.dir, "fr_ulb")
	if derived.Metadata.Path != containerDir {
		t.Fatalf("derived metadata path = %q, want %q", derived.Metadata.Path, containerDir)
	}
	if _, err := os.Stat(containerDir); err != nil {
		t.Fatalf("derived container missing: %v", err)
	}

	m, err := rcpkg.ReadManifest(containerDir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	entry := m.Project("jas")
	if entry == nil {
		t.Fatal("manifest missing project entry")
	}
	if entry.Sort != 1 {
		t.Fatalf("manifest sort = %d", entry.Sort)
	}
	if m.DublinCore.Language.Identifier != "fr" {
		t.Fatalf("manifest language = %q", m.DublinCore.Language.Identifier)
	}
}

// failingWriter errors on AddProject so the transaction must roll back.
type failingWriter struct {
	inner rcpkg.Writer
}

func (w failingWriter) CreateContainer(ctx context.Context, m *rcpkg.Manifest) (string, error) {
	return w.inner.CreateContainer(ctx, m)
}

func (w failingWriter) AddProject(context.Context, string, rcpkg.ManifestProject) error {
	return errors.New("disk full")
}

func TestDeriveRollsBackOnWriterFailure(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	engine := derivation.New(f.store, failingWriter{inner: rcpkg.NewDirWriter(f.dir, nil)}, nil)
	if _, err := engine.Derive(ctx, derivation.Request{SourceProjectID: f.projectID, LanguageSlug: "fr"}); err == nil {
		t.Fatal("expected Derive to fail")
	}

	all, err := f.store.AllResourceMetadata(ctx)
	if err != nil {
		t.Fatalf("AllResourceMetadata: %v", err)
	}
	// Only the imported pair; the derived rows rolled back.
	if len(all) != 2 {
		t.Fatalf("expected rollback to leave 2 metadata rows, got %d", len(all))
	}
	derivedProjects, err := f.store.ProjectCollections(ctx, true)
	if err != nil {
		t.Fatalf("ProjectCollections: %v", err)
	}
	if len(derivedProjects) != 0 {
		t.Fatalf("expected no derived projects after rollback, got %d", len(derivedProjects))
	}
}
