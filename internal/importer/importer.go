package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"canticle/internal/logging"
	"canticle/internal/rcpkg"
	"canticle/internal/store"
	"canticle/internal/subtree"
)

// Importer writes parsed containers into the workspace store.
type Importer struct {
	store *store.Store
	log   *slog.Logger
}

// New builds an Importer.
func New(st *store.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Importer{store: st, log: logger}
}

// Import brings one container into the workspace. Expected rejections
// (AlreadyExists, UnmatchedHelp) come back as the Result with a nil error;
// LoadError carries the underlying cause. Nothing is persisted unless the
// result is Success.
func (im *Importer) Import(ctx context.Context, pkg *rcpkg.Package) (Result, error) {
	log := im.log.With(
		logging.FieldSessionID, uuid.NewString(),
		logging.FieldContainer, pkg.Metadata.Identifier,
		logging.FieldLanguage, pkg.Language.Slug,
	)

	if err := pkg.Validate(); err != nil {
		log.Warn("container rejected", "error", err)
		return LoadError, err
	}

	err := im.store.WithTx(ctx, func(q *store.Queries) error {
		return im.importTx(ctx, q, pkg, log)
	})
	if err != nil {
		var re *resultError
		if errors.As(err, &re) {
			log.Info("import rejected", "result", re.result.String())
			return re.result, nil
		}
		log.Error("import failed", "error", err)
		return LoadError, err
	}

	log.Info("container imported", "type", string(pkg.Type))
	return Success, nil
}

func (im *Importer) importTx(ctx context.Context, q *store.Queries, pkg *rcpkg.Package, log *slog.Logger) error {
	lang, err := q.EnsureLanguage(ctx, pkg.Language.Slug, pkg.Language.Name, pkg.Language.Direction)
	if err != nil {
		return err
	}

	existing, err := q.LatestVersion(ctx, pkg.Language.Slug, pkg.Metadata.Identifier)
	if err != nil {
		return err
	}
	if existing != nil && existing.DerivedFromID == 0 {
		return abort(AlreadyExists, fmt.Errorf("%s/%s is already imported", pkg.Language.Slug, pkg.Metadata.Identifier))
	}

	meta := metadataFromPackage(pkg, lang.ID)
	metaID, err := q.InsertResourceMetadata(ctx, meta)
	if err != nil {
		return err
	}

	related, err := im.linkRelated(ctx, q, pkg, metaID, log)
	if err != nil {
		return err
	}

	if pkg.Type == rcpkg.TypeHelp {
		if len(related) == 0 {
			return abort(UnmatchedHelp, fmt.Errorf("no declared relation of %s resolves to an imported book", pkg.Metadata.Identifier))
		}
		return im.importHelp(ctx, q, pkg, metaID, related, log)
	}

	return im.importTree(ctx, q, pkg.Root, 0, metaID)
}

// linkRelated resolves each declared relation to its latest imported source
// container, preferring the same creator, and records the symmetric link.
// Unresolvable relations are skipped; help containers check afterwards that
// at least one resolved.
func (im *Importer) linkRelated(ctx context.Context, q *store.Queries, pkg *rcpkg.Package, metaID int64, log *slog.Logger) ([]*store.ResourceMetadata, error) {
	var related []*store.ResourceMetadata
	for _, rel := range pkg.Relations {
		match, err := q.LatestVersionMatch(ctx, rel.Language, rel.Identifier, pkg.Metadata.Creator, 0)
		if err != nil {
			return nil, err
		}
		if match == nil {
			log.Debug("relation unresolved", "relation", rel.Language+"/"+rel.Identifier)
			continue
		}
		if err := q.AddRCLink(ctx, metaID, match.ID); err != nil {
			return nil, err
		}
		related = append(related, match)
	}
	return related, nil
}

// importHelp anchors the help tree onto each related book and links the
// inserted helper rows to chapters and verses.
func (im *Importer) importHelp(ctx context.Context, q *store.Queries, pkg *rcpkg.Package, metaID int64, related []*store.ResourceMetadata, log *slog.Logger) error {
	for _, host := range related {
		if err := im.anchorHelpNode(ctx, q, pkg.Root, host.ID, metaID, log); err != nil {
			return err
		}
		roots, err := q.RootCollectionsForMetadata(ctx, host.ID)
		if err != nil {
			return err
		}
		for _, root := range roots {
			if err := subtree.Refresh(ctx, q, root.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (im *Importer) anchorHelpNode(ctx context.Context, q *store.Queries, node *rcpkg.Node, hostMetaID, helpMetaID int64, log *slog.Logger) error {
	if node.Collection == nil {
		return nil
	}
	host, err := q.CollectionByAnchor(ctx, node.Collection.Slug, node.Collection.Label, hostMetaID)
	if err != nil {
		return err
	}
	if host == nil {
		// No matching collection in this book; the node and everything
		// under it is skipped, not an error.
		log.Debug("help node unanchored",
			"slug", node.Collection.Slug,
			"label", node.Collection.Label,
		)
		return nil
	}

	var batch []*store.Content
	for _, child := range node.Children {
		if child.Content != nil {
			batch = append(batch, contentFromSpec(child.Content, host.ID))
		}
	}
	if err := q.InsertContentBatch(ctx, batch); err != nil {
		return err
	}
	if len(batch) > 0 {
		if _, err := q.LinkChapterResources(ctx, host.ID, helpMetaID); err != nil {
			return err
		}
		if _, err := q.LinkVerseResources(ctx, host.ID, helpMetaID); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if child.Collection != nil {
			if err := im.anchorHelpNode(ctx, q, child, hostMetaID, helpMetaID, log); err != nil {
				return err
			}
		}
	}
	return nil
}

// importTree creates the collection and content rows for a book or bundle.
func (im *Importer) importTree(ctx context.Context, q *store.Queries, node *rcpkg.Node, parentID, metaID int64) error {
	if node.Collection == nil {
		return fmt.Errorf("container tree root must be a collection")
	}

	collectionID, err := q.InsertCollection(ctx, &store.Collection{
		ParentID:   parentID,
		Slug:       node.Collection.Slug,
		Title:      node.Collection.Title,
		Label:      node.Collection.Label,
		Sort:       node.Collection.Sort,
		MetadataID: metaID,
		ModifiedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	var batch []*store.Content
	for _, child := range node.Children {
		if child.Content != nil {
			batch = append(batch, contentFromSpec(child.Content, collectionID))
		}
	}
	if err := q.InsertContentBatch(ctx, batch); err != nil {
		return err
	}

	for _, child := range node.Children {
		if child.Collection != nil {
			if err := im.importTree(ctx, q, child, collectionID, metaID); err != nil {
				return err
			}
		}
	}
	return nil
}

func metadataFromPackage(pkg *rcpkg.Package, languageID int64) *store.ResourceMetadata {
	return &store.ResourceMetadata{
		ConformsTo:  pkg.Metadata.ConformsTo,
		Creator:     pkg.Metadata.Creator,
		Description: pkg.Metadata.Description,
		Format:      pkg.Metadata.Format,
		Identifier:  pkg.Metadata.Identifier,
		Issued:      pkg.Metadata.Issued,
		LanguageID:  languageID,
		Modified:    pkg.Metadata.Modified,
		Publisher:   pkg.Metadata.Publisher,
		Subject:     pkg.Metadata.Subject,
		Type:        pkg.Metadata.Type,
		Title:       pkg.Metadata.Title,
		Version:     pkg.Metadata.Version,
		Path:        pkg.Path,
	}
}

func contentFromSpec(spec *rcpkg.ContentSpec, collectionID int64) *store.Content {
	return &store.Content{
		CollectionID: collectionID,
		Sort:         spec.Sort,
		Start:        spec.Start,
		Label:        spec.Label,
		Text:         spec.Text,
		Format:       spec.Format,
		Type:         spec.Type,
	}
}
