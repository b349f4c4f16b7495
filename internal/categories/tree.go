package categories

import "strings"

// ChildrenOf returns the immediate children of categoryID.
func ChildrenOf(categoryID string, cats []Category) []Category {
	var children []Category
	for _, cat := range cats {
		if cat.ParentID != nil && *cat.ParentID == categoryID {
			children = append(children, cat)
		}
	}
	return children
}

// DescendantIDs returns every id below categoryID. The result never contains categoryID
// itself, and traversal terminates on parent cycles.
func DescendantIDs(categoryID string, cats []Category) map[string]struct{} {
	return descendants(categoryID, childIndex(cats))
}

func childIndex(cats []Category) map[string][]string {
	children := make(map[string][]string, len(cats))
	for _, cat := range cats {
		if cat.ParentID != nil {
			children[*cat.ParentID] = append(children[*cat.ParentID], cat.ID)
		}
	}
	return children
}

func descendants(root string, children map[string][]string) map[string]struct{} {
	out := make(map[string]struct{})
	visited := map[string]struct{}{root: {}}
	queue := append([]string(nil), children[root]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		out[id] = struct{}{}
		queue = append(queue, children[id]...)
	}
	return out
}

// SubtreeMatcher precomputes the subtree of categoryID and returns a predicate over
// category references. Use it when testing many products against the same category.
func SubtreeMatcher(categoryID string, cats []Category) func(Ref) bool {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" || categoryID == AllID {
		return func(Ref) bool { return true }
	}
	subtree := DescendantIDs(categoryID, cats)
	return func(ref Ref) bool {
		if ref.ID == "" {
			return false
		}
		if ref.ID == categoryID {
			return true
		}
		_, ok := subtree[ref.ID]
		return ok
	}
}

// IsInSubtree reports whether ref resolves to categoryID or one of its descendants.
// AllID (and the empty id) match everything.
func IsInSubtree(ref Ref, categoryID string, cats []Category) bool {
	return SubtreeMatcher(categoryID, cats)(ref)
}

// ResolveCategoryName prefers the embedded name, then a lookup by id, then Uncategorized.
func ResolveCategoryName(ref Ref, cats []Category) string {
	if name := strings.TrimSpace(ref.Name); name != "" {
		return name
	}
	if ref.ID != "" {
		for _, cat := range cats {
			if cat.ID == ref.ID && strings.TrimSpace(cat.Name) != "" {
				return cat.Name
			}
		}
	}
	return Uncategorized
}
