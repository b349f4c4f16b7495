package categories

import (
	"slices"
	"testing"
)

func categoryIDs(cats []Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.ID)
	}
	return out
}

func TestIndexTreeAndAncestors(t *testing.T) {
	idx := NewIndex(chain())

	if got := categoryIDs(idx.Roots()); !slices.Equal(got, []string{"1", "4"}) {
		t.Fatalf("unexpected roots %v", got)
	}

	tree := idx.Tree()
	if len(tree) != 2 || len(tree[0].Children) != 1 || len(tree[0].Children[0].Children) != 1 {
		t.Fatalf("unexpected tree shape %+v", tree)
	}
	if got := tree[0].Children[0].Children[0].ID; got != "3" {
		t.Fatalf("expected leaf 3, got %s", got)
	}
	if len(tree[1].Children) != 0 {
		t.Fatalf("Makeup should have no children")
	}

	if got := categoryIDs(idx.Ancestors("3")); !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Fatalf("unexpected breadcrumb %v", got)
	}
	if idx.Ancestors("missing") != nil {
		t.Fatalf("unknown id should have no breadcrumb")
	}
}

func TestIndexHandlesCycles(t *testing.T) {
	idx := NewIndex([]Category{
		{ID: "a", ParentID: strPtr("b")},
		{ID: "b", ParentID: strPtr("a")},
		{ID: "r"},
	})
	tree := idx.Tree()
	if len(tree) != 1 || tree[0].ID != "r" {
		t.Fatalf("expected only r as root, got %+v", tree)
	}
	if got := len(idx.Ancestors("a")); got != 2 {
		t.Fatalf("expected cyclic breadcrumb to stop after 2, got %d", got)
	}
}

func TestIndexOrphanIsRoot(t *testing.T) {
	idx := NewIndex([]Category{{ID: "x", ParentID: strPtr("gone")}})
	if got := categoryIDs(idx.Roots()); !slices.Equal(got, []string{"x"}) {
		t.Fatalf("orphan should be a root, got %v", got)
	}
}

func TestIndexNameAndMatcher(t *testing.T) {
	idx := NewIndex(chain())
	if got := idx.Name(Ref{ID: "3"}); got != "Ampoules" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := idx.Name(Ref{ID: "nope"}); got != Uncategorized {
		t.Fatalf("unexpected name %q", got)
	}

	match := idx.Matcher("2")
	if !match(Ref{ID: "3"}) || !match(Ref{ID: "2"}) || match(Ref{ID: "1"}) {
		t.Fatalf("matcher for 2 should cover 2 and 3 only")
	}
	if !idx.Matcher(AllID)(Ref{}) {
		t.Fatalf("all should match uncategorized products")
	}

	var nilIdx *Index
	if got := nilIdx.Name(Ref{ID: "3"}); got != Uncategorized {
		t.Fatalf("nil index name: %q", got)
	}
	if !nilIdx.Matcher("3")(Ref{ID: "3"}) || nilIdx.Matcher("3")(Ref{ID: "4"}) {
		t.Fatalf("nil index should match exact ids only")
	}
}
