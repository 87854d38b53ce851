package rcpkg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"canticle/internal/store"
)

func writeContainer(t *testing.T, manifest, tree string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestFilename), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "content"), 0o755); err != nil {
		t.Fatalf("mkdir content: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(TreeFilename)), []byte(tree), 0o644); err != nil {
		t.Fatalf("write tree: %v", err)
	}
	return dir
}

const sampleManifest = `
[dublin_core]
identifier = "ulb"
creator = "door43"
subject = "Bible"
type = "book"
title = "Unlocked Literal Bible"
version = "12"
relation = ["en/tn"]

[dublin_core.language]
identifier = "en"
title = "English"
direction = "ltr"
`

const sampleTree = `
[root]
slug = "jas"
title = "James"
label = "project"
sort = 59

[[root.children]]
slug = "jas_1"
title = "James 1"
label = "chapter"
sort = 1

[[root.children.items]]
sort = 0
start = 0
label = "chapter"
type = "meta"

[[root.children.items]]
sort = 1
start = 1
label = "verse"
text = "Count it all joy"
type = "text"
`

func TestLoadPackage(t *testing.T) {
	dir := writeContainer(t, sampleManifest, sampleTree)

	pkg, err := LoadPackage(dir)
	if err != nil {
		t.Fatalf("LoadPackage returned error: %v", err)
	}
	if pkg.Type != TypeBook {
		t.Fatalf("type = %q", pkg.Type)
	}
	if pkg.Language.Slug != "en" || pkg.Language.Direction != "ltr" {
		t.Fatalf("language = %+v", pkg.Language)
	}
	if len(pkg.Relations) != 1 || pkg.Relations[0].Identifier != "tn" {
		t.Fatalf("relations = %+v", pkg.Relations)
	}
	if pkg.Root.Collection.Slug != "jas" || pkg.Root.Collection.Sort != 59 {
		t.Fatalf("root = %+v", pkg.Root.Collection)
	}
	if len(pkg.Root.Children) != 1 {
		t.Fatalf("expected one chapter, got %d", len(pkg.Root.Children))
	}
	chapter := pkg.Root.Children[0]
	if len(chapter.Children) != 2 {
		t.Fatalf("expected two content rows, got %d", len(chapter.Children))
	}
	verse := chapter.Children[1].Content
	if verse.Type != store.ContentTypeText || verse.Text != "Count it all joy" {
		t.Fatalf("verse = %+v", verse)
	}
}

func TestLoadPackageRejectsBadType(t *testing.T) {
	dir := writeContainer(t, strings.Replace(sampleManifest, `type = "book"`, `type = "audio"`, 1), sampleTree)
	if _, err := LoadPackage(dir); err == nil {
		t.Fatal("expected error for unknown container type")
	}
}

func TestLoadPackageRejectsBadContentType(t *testing.T) {
	dir := writeContainer(t, sampleManifest, strings.Replace(sampleTree, `type = "text"`, `type = "verse"`, 1))
	if _, err := LoadPackage(dir); err == nil {
		t.Fatal("expected error for unknown content type")
	}
}

func TestLoadPackageMissingManifest(t *testing.T) {
	if _, err := LoadPackage(t.TempDir()); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
