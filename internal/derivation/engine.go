package derivation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"canticle/internal/logging"
	"canticle/internal/rcpkg"
	"canticle/internal/store"
	"canticle/internal/subtree"
)

// CreatorTag marks metadata rows created by derivation rather than import.
const CreatorTag = "canticle"

// Bible books after Malachi shift their manifest sort by one to leave room
// for intertestamental material.
const lastOldTestamentSort = 39

// Request names the source project and the target language.
type Request struct {
	SourceProjectID   int64
	LanguageSlug      string
	LanguageName      string
	LanguageDirection string
}

// Derived is the outcome of a derivation.
type Derived struct {
	Project  *store.Collection
	Metadata *store.ResourceMetadata
}

// Engine derives projects into new languages.
type Engine struct {
	store  *store.Store
	writer rcpkg.Writer
	log    *slog.Logger
}

// New builds an Engine.
func New(st *store.Store, writer rcpkg.Writer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{store: st, writer: writer, log: logger}
}

// Derive creates (or finds) the derived project for the request. The store
// work runs in one transaction; deriving the same project into the same
// language twice returns the existing rows untouched apart from the
// project's modified timestamp.
func (e *Engine) Derive(ctx context.Context, req Request) (*Derived, error) {
	if req.SourceProjectID == 0 {
		return nil, errors.New("derive: source project id must be set")
	}
	if req.LanguageSlug == "" {
		return nil, errors.New("derive: target language slug must be set")
	}

	var out *Derived
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		derived, err := e.deriveTx(ctx, q, req)
		if err != nil {
			return err
		}
		out = derived
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("project derived",
		logging.FieldProject, out.Project.Slug,
		logging.FieldLanguage, req.LanguageSlug,
	)
	return out, nil
}

func (e *Engine) deriveTx(ctx context.Context, q *store.Queries, req Request) (*Derived, error) {
	source, err := q.CollectionByID(ctx, req.SourceProjectID)
	if err != nil {
		return nil, fmt.Errorf("load source project: %w", err)
	}
	sourceMeta, err := q.ResourceMetadataByID(ctx, source.MetadataID)
	if err != nil {
		return nil, fmt.Errorf("load source metadata: %w", err)
	}

	lang, err := q.EnsureLanguage(ctx, req.LanguageSlug, req.LanguageName, req.LanguageDirection)
	if err != nil {
		return nil, err
	}

	primary, err := e.deriveMetadata(ctx, q, sourceMeta, lang)
	if err != nil {
		return nil, err
	}

	helpers, err := q.LinkedResourceMetadata(ctx, sourceMeta.ID)
	if err != nil {
		return nil, err
	}
	derivedHelpers := make(map[int64]*store.ResourceMetadata, len(helpers))
	for _, helper := range helpers {
		derivedHelper, err := e.deriveMetadata(ctx, q, helper, lang)
		if err != nil {
			return nil, err
		}
		if err := q.AddRCLink(ctx, primary.ID, derivedHelper.ID); err != nil {
			return nil, err
		}
		derivedHelpers[helper.ID] = derivedHelper
	}

	// Idempotence: a matching derived project means a previous derivation
	// already built the whole tree.
	existing, err := q.CollectionByAnchor(ctx, source.Slug, source.Label, primary.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := q.TouchCollection(ctx, existing.ID); err != nil {
			return nil, err
		}
		e.log.Debug("derived project reused", logging.FieldProject, existing.Slug)
		return &Derived{Project: existing, Metadata: primary}, nil
	}

	projectID, err := q.InsertCollection(ctx, &store.Collection{
		SourceID:   source.ID,
		Slug:       source.Slug,
		Title:      source.Title,
		Label:      source.Label,
		Sort:       source.Sort,
		MetadataID: primary.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := q.CopyChildCollections(ctx, source.ID, projectID, primary.ID); err != nil {
		return nil, err
	}
	if err := q.CopyContentIntoDerivedChildren(ctx, projectID); err != nil {
		return nil, err
	}
	if err := pairDerivedChildren(ctx, q, projectID); err != nil {
		return nil, err
	}
	for helperID, derivedHelper := range derivedHelpers {
		if err := q.CopyResourceLinks(ctx, helperID, derivedHelper.ID, projectID); err != nil {
			return nil, err
		}
	}
	if err := subtree.Refresh(ctx, q, projectID); err != nil {
		return nil, err
	}

	if err := e.writer.AddProject(ctx, primary.Path, rcpkg.ManifestProject{
		Identifier: source.Slug,
		Title:      source.Title,
		Path:       "./content/" + source.Slug,
		Sort:       manifestSort(sourceMeta.Subject, source.Sort),
	}); err != nil {
		return nil, fmt.Errorf("record project in manifest: %w", err)
	}

	project, err := q.CollectionByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &Derived{Project: project, Metadata: primary}, nil
}

// deriveMetadata finds or creates the derived metadata row for src in the
// target language, materializing the on-disk container when the row is new.
func (e *Engine) deriveMetadata(ctx context.Context, q *store.Queries, src *store.ResourceMetadata, lang *store.Language) (*store.ResourceMetadata, error) {
	existing, err := q.FindDerivedMetadata(ctx, src.Identifier, lang.ID, CreatorTag, src.Version, src.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	containerType := src.Type
	if containerType == string(rcpkg.TypeBundle) {
		// A bundle source derives one book at a time.
		containerType = string(rcpkg.TypeBook)
	}

	path, err := e.writer.CreateContainer(ctx, &rcpkg.Manifest{
		DublinCore: rcpkg.DublinCore{
			ConformsTo: src.ConformsTo,
			Creator:    CreatorTag,
			Format:     src.Format,
			Identifier: src.Identifier,
			Language: rcpkg.ManifestLanguage{
				Identifier: lang.Slug,
				Title:      lang.Name,
				Direction:  lang.Direction,
			},
			Subject: src.Subject,
			Type:    containerType,
			Title:   src.Title,
			Version: src.Version,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("materialize derived container: %w", err)
	}

	derived := &store.ResourceMetadata{
		ConformsTo:    src.ConformsTo,
		Creator:       CreatorTag,
		Description:   src.Description,
		Format:        src.Format,
		Identifier:    src.Identifier,
		Issued:        src.Issued,
		LanguageID:    lang.ID,
		Modified:      src.Modified,
		Publisher:     src.Publisher,
		Subject:       src.Subject,
		Type:          containerType,
		Title:         src.Title,
		Version:       src.Version,
		Path:          path,
		DerivedFromID: src.ID,
	}
	id, err := q.InsertResourceMetadata(ctx, derived)
	if err != nil {
		return nil, err
	}
	derived.ID = id
	return derived, nil
}

// manifestSort computes the manifest sort for a derived project entry.
// Subject casing varies between publishers, so the comparison folds case.
func manifestSort(subject string, sourceSort int64) int64 {
	if strings.EqualFold(subject, "Bible") && sourceSort > lastOldTestamentSort {
		return sourceSort + 1
	}
	return sourceSort
}
