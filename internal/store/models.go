package store

// Foreign keys in the models below use 0 for "unset"; row ids assigned by
// SQLite start at 1, so 0 never collides with a real reference.

// Language identifies a translation language by slug.
type Language struct {
	ID        int64
	Slug      string
	Name      string
	Direction string
}

// Collection is a node in the workspace tree: a project, book, or chapter.
type Collection struct {
	ID         int64
	ParentID   int64
	SourceID   int64
	Slug       string
	Title      string
	Label      string
	Sort       int64
	MetadataID int64
	ModifiedAt string
}

// Content is a leaf item under exactly one collection: a verse, a chapter
// meta row, or a helper note. Start 0 is reserved for chapter-level anchors.
type Content struct {
	ID             int64
	CollectionID   int64
	Sort           int64
	Start          int64
	Label          string
	SelectedTakeID int64
	Text           string
	Format         string
	Type           ContentType
}

// ResourceMetadata describes one imported resource container.
type ResourceMetadata struct {
	ID            int64
	ConformsTo    string
	Creator       string
	Description   string
	Format        string
	Identifier    string
	Issued        string
	LanguageID    int64
	Modified      string
	Publisher     string
	Subject       string
	Type          string
	Title         string
	Version       string
	Path          string
	DerivedFromID int64
}

// ResourceLink attaches helper content to the content or collection it
// annotates, scoped by the metadata owning the helper.
type ResourceLink struct {
	ID                int64
	ResourceContentID int64
	Target            LinkTarget
	MetadataID        int64
}

// LinkTarget is the destination of a resource link: exactly one of a content
// row or a collection row. Constructing it through LinkToContent or
// LinkToCollection keeps the one-of invariant out of reach of callers; the
// two nullable columns exist only at the storage boundary.
type LinkTarget struct {
	id           int64
	toCollection bool
}

// LinkToContent targets a content row.
func LinkToContent(contentID int64) LinkTarget {
	return LinkTarget{id: contentID}
}

// LinkToCollection targets a collection row.
func LinkToCollection(collectionID int64) LinkTarget {
	return LinkTarget{id: collectionID, toCollection: true}
}

// ContentID reports the targeted content row, if any.
func (t LinkTarget) ContentID() (int64, bool) {
	if t.toCollection {
		return 0, false
	}
	return t.id, t.id != 0
}

// CollectionID reports the targeted collection row, if any.
func (t LinkTarget) CollectionID() (int64, bool) {
	if !t.toCollection {
		return 0, false
	}
	return t.id, t.id != 0
}

func linkTargetFromColumns(contentID, collectionID int64) LinkTarget {
	if collectionID != 0 {
		return LinkToCollection(collectionID)
	}
	return LinkToContent(contentID)
}

// SubtreePair is one row of the subtree_has_resource cache.
type SubtreePair struct {
	CollectionID int64
	MetadataID   int64
}
