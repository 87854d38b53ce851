package testsupport

import (
	"fmt"

	"canticle/internal/rcpkg"
	"canticle/internal/store"
)

// BookPackage builds a parsed single-book container: a project collection
// with the given number of chapters, each holding a chapter meta row at
// start 0 and one text row per verse.
func BookPackage(lang, identifier, book string, chapters, versesPerChapter int) *rcpkg.Package {
	var chapterNodes []*rcpkg.Node
	for ch := 1; ch <= chapters; ch++ {
		children := []*rcpkg.Node{
			rcpkg.NewContentNode(rcpkg.ContentSpec{
				Sort:  0,
				Start: 0,
				Label: "chapter",
				Type:  store.ContentTypeMeta,
			}),
		}
		for v := 1; v <= versesPerChapter; v++ {
			children = append(children, rcpkg.NewContentNode(rcpkg.ContentSpec{
				Sort:  int64(v),
				Start: int64(v),
				Label: "verse",
				Text:  fmt.Sprintf("%s %d:%d", book, ch, v),
				Type:  store.ContentTypeText,
			}))
		}
		chapterNodes = append(chapterNodes, rcpkg.NewCollectionNode(rcpkg.CollectionSpec{
			Slug:  fmt.Sprintf("%s_%d", book, ch),
			Title: fmt.Sprintf("%s %d", book, ch),
			Label: "chapter",
			Sort:  int64(ch),
		}, children...))
	}

	return &rcpkg.Package{
		Path:     "/containers/" + lang + "_" + identifier,
		Type:     rcpkg.TypeBook,
		Language: rcpkg.Language{Slug: lang, Name: lang, Direction: "ltr"},
		Metadata: rcpkg.Metadata{
			Creator:    "test",
			Identifier: identifier,
			Subject:    "Bible",
			Title:      identifier,
			Type:       "book",
			Version:    "1",
		},
		Root: rcpkg.NewCollectionNode(rcpkg.CollectionSpec{
			Slug:  book,
			Title: book,
			Label: "project",
			Sort:  1,
		}, chapterNodes...),
	}
}

// HelpPackage builds a parsed help container whose tree mirrors the book
// produced by BookPackage: per chapter a chapter-level title/body pair at
// start 0 and a title/body pair per verse. relations declares the books it
// annotates ("languageSlug/identifier").
func HelpPackage(lang, identifier, book string, chapters, versesPerChapter int, relations ...string) *rcpkg.Package {
	parsed, err := rcpkg.ParseRelations(relations)
	if err != nil {
		panic(err)
	}

	var chapterNodes []*rcpkg.Node
	for ch := 1; ch <= chapters; ch++ {
		var children []*rcpkg.Node
		for v := 0; v <= versesPerChapter; v++ {
			children = append(children,
				rcpkg.NewContentNode(rcpkg.ContentSpec{
					Sort:  int64(2 * v),
					Start: int64(v),
					Label: "title",
					Text:  fmt.Sprintf("note title %d:%d", ch, v),
					Type:  store.ContentTypeTitle,
				}),
				rcpkg.NewContentNode(rcpkg.ContentSpec{
					Sort:  int64(2*v + 1),
					Start: int64(v),
					Label: "body",
					Text:  fmt.Sprintf("note body %d:%d", ch, v),
					Type:  store.ContentTypeBody,
				}),
			)
		}
		chapterNodes = append(chapterNodes, rcpkg.NewCollectionNode(rcpkg.CollectionSpec{
			Slug:  fmt.Sprintf("%s_%d", book, ch),
			Title: fmt.Sprintf("%s %d", book, ch),
			Label: "chapter",
			Sort:  int64(ch),
		}, children...))
	}

	return &rcpkg.Package{
		Path:     "/containers/" + lang + "_" + identifier,
		Type:     rcpkg.TypeHelp,
		Language: rcpkg.Language{Slug: lang, Name: lang, Direction: "ltr"},
		Metadata: rcpkg.Metadata{
			Creator:    "test",
			Identifier: identifier,
			Subject:    "Translation Notes",
			Title:      identifier,
			Type:       "help",
			Version:    "1",
		},
		Relations: parsed,
		Root: rcpkg.NewCollectionNode(rcpkg.CollectionSpec{
			Slug:  book,
			Title: book,
			Label: "project",
			Sort:  1,
		}, chapterNodes...),
	}
}
