package variations

import (
	"maps"
	"strings"

	product "github.com/angelmondragon/kbeauty-storefront/internal/products"
)

// State is how far a shopper has got through a product's variation types.
type State int

const (
	Empty State = iota
	Partial
	Complete
)

func (s State) String() string {
	switch s {
	case Partial:
		return "partial"
	case Complete:
		return "complete"
	default:
		return "empty"
	}
}

// Selection maps a variation type name to the chosen option name. Values are treated
// as immutable: Select and Deselect return a new Selection.
type Selection map[string]string

// Select sets or overwrites the option for typeName.
func (s Selection) Select(typeName, option string) Selection {
	out := s.clone()
	typeName, option = strings.TrimSpace(typeName), strings.TrimSpace(option)
	if typeName == "" || option == "" {
		return out
	}
	out[typeName] = option
	return out
}

// Deselect removes the entry for typeName.
func (s Selection) Deselect(typeName string) Selection {
	out := s.clone()
	delete(out, strings.TrimSpace(typeName))
	return out
}

// State counts the declared types that carry a choice. A product without
// variation types is always Empty.
func (s Selection) State(types []product.VariationType) State {
	chosen := 0
	for _, vt := range types {
		if s[vt.Name] != "" {
			chosen++
		}
	}
	switch {
	case chosen == 0:
		return Empty
	case chosen < len(types):
		return Partial
	default:
		return Complete
	}
}

func (s Selection) clone() Selection {
	out := make(Selection, len(s))
	maps.Copy(out, s)
	return out
}

// Display renders the selection in declared type order, e.g. "Size: L / Color: Red".
func Display(s Selection, types []product.VariationType) string {
	parts := make([]string, 0, len(types))
	for _, vt := range types {
		if opt := s[vt.Name]; opt != "" {
			parts = append(parts, vt.Name+": "+opt)
		}
	}
	return strings.Join(parts, " / ")
}

// sanitize drops entries naming undeclared types or options and reports them as
// "Type: Option" labels.
func sanitize(p product.Product, s Selection) (Selection, []string) {
	clean := make(Selection, len(s))
	var ignored []string
	for typeName, option := range s {
		vt, ok := p.TypeNamed(typeName)
		if ok {
			_, ok = vt.Option(option)
		}
		if !ok {
			ignored = append(ignored, typeName+": "+option)
			continue
		}
		clean[typeName] = option
	}
	return clean, ignored
}
