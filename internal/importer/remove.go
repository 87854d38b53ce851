package importer

import (
	"context"
	"fmt"

	"canticle/internal/store"
)

// Remove deletes an imported source container: its metadata row, owned
// collections, helper content it placed in other containers, and every link
// touching it, in one transaction. Containers that derived containers still
// reference cannot be removed.
func (im *Importer) Remove(ctx context.Context, languageSlug, identifier string) error {
	err := im.store.WithTx(ctx, func(q *store.Queries) error {
		meta, err := q.LatestVersion(ctx, languageSlug, identifier)
		if err != nil {
			return err
		}
		if meta == nil || meta.DerivedFromID != 0 {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, languageSlug, identifier)
		}

		derivatives, err := q.DerivativesOf(ctx, meta.ID)
		if err != nil {
			return err
		}
		if len(derivatives) > 0 {
			return fmt.Errorf("%w: %s/%s has %d derivatives", ErrDependencyExists, languageSlug, identifier, len(derivatives))
		}

		// Helper rows this container placed inside other books do not
		// cascade off the metadata row; remove them explicitly.
		if err := q.DeleteContentLinkedToMetadata(ctx, meta.ID); err != nil {
			return err
		}
		if err := q.DeleteResourceMetadata(ctx, meta.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	im.log.Info("container removed", "language", languageSlug, "container", identifier)
	return nil
}
