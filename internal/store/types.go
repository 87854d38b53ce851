package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ContentType classifies a content row.
type ContentType string

const (
	// ContentTypeText is a recordable verse or chunk.
	ContentTypeText ContentType = "text"
	// ContentTypeMeta is the chapter-level meta row (e.g. the chapter title).
	ContentTypeMeta ContentType = "meta"
	// ContentTypeTitle is a helper resource title.
	ContentTypeTitle ContentType = "title"
	// ContentTypeBody is a helper resource body.
	ContentTypeBody ContentType = "body"
)

// PrimaryContentTypes are the types helper resources anchor onto.
var PrimaryContentTypes = []ContentType{ContentTypeText}

// HelpContentTypes are the types carried by helper packages.
var HelpContentTypes = []ContentType{ContentTypeTitle, ContentTypeBody}

// TypeMap is the immutable bidirectional mapping between the content-type
// enumeration and its store-assigned ids. It is constructed once when the
// store opens and injected wherever type ids are needed; there is no lazy
// global cache.
type TypeMap struct {
	byType map[ContentType]int64
	byID   map[int64]ContentType
}

func loadTypeMap(ctx context.Context, db *sql.DB) (*TypeMap, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM content_type`)
	if err != nil {
		return nil, fmt.Errorf("load content types: %w", err)
	}
	defer rows.Close()

	tm := &TypeMap{
		byType: make(map[ContentType]int64),
		byID:   make(map[int64]ContentType),
	}
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan content type: %w", err)
		}
		tm.byType[ContentType(name)] = id
		tm.byID[id] = ContentType(name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content types: %w", err)
	}

	for _, ct := range []ContentType{ContentTypeText, ContentTypeMeta, ContentTypeTitle, ContentTypeBody} {
		if _, ok := tm.byType[ct]; !ok {
			return nil, fmt.Errorf("%w: %s missing from content_type table", ErrUnknownContentType, ct)
		}
	}
	return tm, nil
}

// ID returns the store-assigned id for a content type.
func (tm *TypeMap) ID(ct ContentType) (int64, error) {
	id, ok := tm.byType[ct]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownContentType, ct)
	}
	return id, nil
}

// Type returns the content type for a store-assigned id.
func (tm *TypeMap) Type(id int64) (ContentType, error) {
	ct, ok := tm.byID[id]
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrUnknownContentType, id)
	}
	return ct, nil
}

func (tm *TypeMap) idsOf(types []ContentType) ([]int64, error) {
	ids := make([]int64, 0, len(types))
	for _, ct := range types {
		id, err := tm.ID(ct)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
