package categories

import "strings"

// Index is a read-only lookup over one catalog snapshot's categories.
// It is safe for concurrent use once built.
type Index struct {
	ordered  []Category
	byID     map[string]Category
	children map[string][]string
}

// Node is a category with its nested children, used for menus.
type Node struct {
	Category
	Children []Node `json:"children"`
}

func NewIndex(cats []Category) *Index {
	idx := &Index{
		ordered:  append([]Category(nil), cats...),
		byID:     make(map[string]Category, len(cats)),
		children: childIndex(cats),
	}
	for _, cat := range cats {
		if _, dup := idx.byID[cat.ID]; !dup {
			idx.byID[cat.ID] = cat
		}
	}
	return idx
}

// Categories returns the normalized list in upstream order.
func (i *Index) Categories() []Category {
	if i == nil {
		return nil
	}
	return append([]Category(nil), i.ordered...)
}

func (i *Index) Lookup(id string) (Category, bool) {
	if i == nil {
		return Category{}, false
	}
	cat, ok := i.byID[id]
	return cat, ok
}

// Name resolves a reference for display. It never returns an empty string.
func (i *Index) Name(ref Ref) string {
	if name := strings.TrimSpace(ref.Name); name != "" {
		return name
	}
	if cat, ok := i.Lookup(ref.ID); ok && strings.TrimSpace(cat.Name) != "" {
		return cat.Name
	}
	return Uncategorized
}

// Roots returns categories without a known parent.
func (i *Index) Roots() []Category {
	if i == nil {
		return nil
	}
	var roots []Category
	for _, cat := range i.ordered {
		if i.isRoot(cat) {
			roots = append(roots, cat)
		}
	}
	return roots
}

func (i *Index) isRoot(cat Category) bool {
	if cat.ParentID == nil {
		return true
	}
	_, known := i.byID[*cat.ParentID]
	return !known
}

// Tree nests categories under their roots. Categories caught in a parent cycle have no
// root and are left out.
func (i *Index) Tree() []Node {
	roots := i.Roots()
	nodes := make([]Node, 0, len(roots))
	for _, root := range roots {
		visited := map[string]struct{}{}
		nodes = append(nodes, i.node(root, visited))
	}
	return nodes
}

func (i *Index) node(cat Category, visited map[string]struct{}) Node {
	visited[cat.ID] = struct{}{}
	n := Node{Category: cat, Children: []Node{}}
	for _, childID := range i.children[cat.ID] {
		if _, seen := visited[childID]; seen {
			continue
		}
		child, ok := i.byID[childID]
		if !ok {
			continue
		}
		n.Children = append(n.Children, i.node(child, visited))
	}
	return n
}

// Ancestors returns the chain from the root down to id, inclusive. Unknown ids yield nil.
func (i *Index) Ancestors(id string) []Category {
	cat, ok := i.Lookup(id)
	if !ok {
		return nil
	}
	chain := []Category{cat}
	visited := map[string]struct{}{id: {}}
	for cat.ParentID != nil {
		parentID := *cat.ParentID
		if _, seen := visited[parentID]; seen {
			break
		}
		visited[parentID] = struct{}{}
		parent, ok := i.byID[parentID]
		if !ok {
			break
		}
		chain = append(chain, parent)
		cat = parent
	}
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return chain
}

// Matcher is SubtreeMatcher backed by the prebuilt child index.
func (i *Index) Matcher(categoryID string) func(Ref) bool {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" || categoryID == AllID {
		return func(Ref) bool { return true }
	}
	var children map[string][]string
	if i != nil {
		children = i.children
	}
	subtree := descendants(categoryID, children)
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
