package categories

import "testing"

func chain() []Category {
	return []Category{
		{ID: "1", Name: "Skincare"},
		{ID: "2", Name: "Serums", ParentID: strPtr("1"), Level: 1},
		{ID: "3", Name: "Ampoules", ParentID: strPtr("2"), Level: 2},
		{ID: "4", Name: "Makeup"},
	}
}

func TestChildrenOfIsOneLevel(t *testing.T) {
	children := ChildrenOf("1", chain())
	if len(children) != 1 || children[0].ID != "2" {
		t.Fatalf("expected only the direct child 2, got %+v", children)
	}
	if got := ChildrenOf("3", chain()); len(got) != 0 {
		t.Fatalf("leaf should have no children, got %+v", got)
	}
}

func TestSelectingRootMatchesWholeSubtree(t *testing.T) {
	cats := chain()
	for _, id := range []string{"1", "2", "3"} {
		if !IsInSubtree(Ref{ID: id}, "1", cats) {
			t.Fatalf("product tagged %s should match category 1", id)
		}
	}
	if IsInSubtree(Ref{ID: "4"}, "1", cats) {
		t.Fatalf("product in a sibling tree should not match")
	}
	if IsInSubtree(Ref{}, "1", cats) {
		t.Fatalf("product without a category should not match a real category")
	}
}

func TestAllMatchesEverything(t *testing.T) {
	for _, ref := range []Ref{{}, {ID: "4"}, {ID: "unknown"}} {
		if !IsInSubtree(ref, AllID, chain()) || !IsInSubtree(ref, "", chain()) {
			t.Fatalf("all should match %+v", ref)
		}
	}
}

func TestDescendantIDsExcludesRootAndSurvivesCycles(t *testing.T) {
	cyclic := []Category{
		{ID: "a", ParentID: strPtr("c")},
		{ID: "b", ParentID: strPtr("a")},
		{ID: "c", ParentID: strPtr("b")},
		{ID: "d", ParentID: strPtr("d")},
	}
	for _, cat := range cyclic {
		ids := DescendantIDs(cat.ID, cyclic)
		if _, ok := ids[cat.ID]; ok {
			t.Fatalf("descendants of %s contain itself", cat.ID)
		}
	}
	ids := DescendantIDs("a", cyclic)
	_, hasB := ids["b"]
	_, hasC := ids["c"]
	if len(ids) != 2 || !hasB || !hasC {
		t.Fatalf("expected descendants b and c, got %v", ids)
	}
	if got := DescendantIDs("d", cyclic); len(got) != 0 {
		t.Fatalf("self-parented category should have no descendants, got %v", got)
	}
}

func TestResolveCategoryName(t *testing.T) {
	cats := chain()
	cases := []struct {
		ref  Ref
		cats []Category
		want string
	}{
		{ref: Ref{ID: "1", Name: "Embedded"}, cats: cats, want: "Embedded"},
		{ref: Ref{ID: "2"}, cats: cats, want: "Serums"},
		{ref: Ref{ID: "missing"}, cats: cats, want: Uncategorized},
		{ref: Ref{}, cats: cats, want: Uncategorized},
		{ref: Ref{ID: "x"}, cats: []Category{{ID: "x"}}, want: Uncategorized},
	}
	for _, tc := range cases {
		if got := ResolveCategoryName(tc.ref, tc.cats); got != tc.want {
			t.Fatalf("%+v: got %q, want %q", tc.ref, got, tc.want)
		}
	}
}
