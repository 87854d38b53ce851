package subtree

import (
	"context"
	"reflect"
	"testing"
)

// fakeSource describes a tree and its link facts in plain maps.
type fakeSource struct {
	children        map[int64][]int64
	collectionLinks map[int64][]int64
	contentLinks    map[int64][]int64
}

func (f fakeSource) ChildCollectionIDs(_ context.Context, id int64) ([]int64, error) {
	return f.children[id], nil
}

func (f fakeSource) CollectionResourceIDs(_ context.Context, id int64) ([]int64, error) {
	return f.collectionLinks[id], nil
}

func (f fakeSource) ContentResourceIDs(_ context.Context, id int64) ([]int64, error) {
	return f.contentLinks[id], nil
}

func TestComputeUnionsChildSets(t *testing.T) {
	// Book 1 with chapters 2 and 3. Chapter 2 has verse-level links to
	// containers 10 and 11, chapter 3 a chapter-level link to 12.
	src := fakeSource{
		children: map[int64][]int64{
			1: {2, 3},
		},
		collectionLinks: map[int64][]int64{
			3: {12},
		},
		contentLinks: map[int64][]int64{
			2: {10, 11},
		},
	}

	result, err := Compute(context.Background(), src, 1)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if got := result.IDs(2); !reflect.DeepEqual(got, []int64{10, 11}) {
		t.Fatalf("chapter 2 ids = %v", got)
	}
	if got := result.IDs(3); !reflect.DeepEqual(got, []int64{12}) {
		t.Fatalf("chapter 3 ids = %v", got)
	}
	if got := result.IDs(1); !reflect.DeepEqual(got, []int64{10, 11, 12}) {
		t.Fatalf("book ids = %v", got)
	}
}

func TestComputeDeduplicatesAcrossLevels(t *testing.T) {
	// Same container linked at both the chapter and one of its verses.
	src := fakeSource{
		children:        map[int64][]int64{1: {2}},
		collectionLinks: map[int64][]int64{2: {10}},
		contentLinks:    map[int64][]int64{2: {10}},
	}

	result, err := Compute(context.Background(), src, 1)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if got := result.IDs(1); !reflect.DeepEqual(got, []int64{10}) {
		t.Fatalf("book ids = %v", got)
	}

	pairs := result.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("expected one pair per collection, got %v", pairs)
	}
}

func TestComputeEmptyTree(t *testing.T) {
	result, err := Compute(context.Background(), fakeSource{}, 7)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if got := result.IDs(7); got != nil {
		t.Fatalf("expected no ids for leaf without links, got %v", got)
	}
	if pairs := result.Pairs(); len(pairs) != 0 {
		t.Fatalf("expected no pairs, got %v", pairs)
	}
}
