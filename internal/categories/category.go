package categories

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// AllID is the synthetic "no filter" category. It is never a parent or a child.
const AllID = "all"

// Uncategorized is shown when a category reference cannot be resolved to a name.
const Uncategorized = "Uncategorized"

// Category is the canonical, normalized category shape.
type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
	Level    int     `json:"level"`
}

// Ref is a category reference as carried by a product: a bare id or an embedded object.
type Ref struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts a string id, an object with id/_id and name, or anything else
// (which yields an empty reference). It never fails.
func (r *Ref) UnmarshalJSON(data []byte) error {
	*r = parseRef(data)
	return nil
}

// RawCategory is a category record as the commerce API sends it.
type RawCategory struct {
	ID     string
	Name   string
	Parent json.RawMessage
	Level  *int
}

func (r *RawCategory) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID             json.RawMessage `json:"id"`
		MongoID        json.RawMessage `json:"_id"`
		Name           string          `json:"name"`
		ParentCategory json.RawMessage `json:"parentCategory"`
		ParentID       json.RawMessage `json:"parentId"`
		Parent         json.RawMessage `json:"parent"`
		Level          *int            `json:"level"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.ID = scalarID(wire.ID)
	if r.ID == "" {
		r.ID = scalarID(wire.MongoID)
	}
	r.Name = strings.TrimSpace(wire.Name)
	r.Level = wire.Level
	for _, candidate := range []json.RawMessage{wire.ParentCategory, wire.ParentID, wire.Parent} {
		if trimmed := bytes.TrimSpace(candidate); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			r.Parent = candidate
			break
		}
	}
	return nil
}

func parseRef(data []byte) Ref {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Ref{}
	}
	switch trimmed[0] {
	case '"', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return Ref{ID: scalarID(trimmed)}
	case '{':
		var obj struct {
			ID      json.RawMessage `json:"id"`
			MongoID json.RawMessage `json:"_id"`
			Name    json.RawMessage `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Ref{}
		}
		ref := Ref{ID: scalarID(obj.ID)}
		if ref.ID == "" {
			ref.ID = scalarID(obj.MongoID)
		}
		var name string
		if err := json.Unmarshal(obj.Name, &name); err == nil {
			ref.Name = strings.TrimSpace(name)
		}
		return ref
	}
	return Ref{}
}

// scalarID reads a JSON string or number as an id; everything else is "".
func scalarID(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		if _, err := strconv.ParseFloat(n.String(), 64); err == nil {
			return n.String()
		}
	}
	return ""
}

// Normalize turns raw records into canonical categories. Parent references become a plain
// id or nil; unparseable parents, self-parents and references to AllID make a record a root.
// Records without an id are dropped. Level is derived from the parent chain when absent.
func Normalize(raw []RawCategory) []Category {
	out := make([]Category, 0, len(raw))
	for _, rc := range raw {
		id := strings.TrimSpace(rc.ID)
		if id == "" || id == AllID {
			continue
		}
		cat := Category{ID: id, Name: rc.Name, Level: -1}
		if parent := parseRef(rc.Parent).ID; parent != "" && parent != id && parent != AllID {
			cat.ParentID = &parent
		}
		if rc.Level != nil && *rc.Level >= 0 {
			cat.Level = *rc.Level
		}
		out = append(out, cat)
	}

	byID := make(map[string]*Category, len(out))
	for i := range out {
		byID[out[i].ID] = &out[i]
	}
	for i := range out {
		if out[i].Level < 0 {
			out[i].Level = depth(out[i].ID, byID)
		}
	}
	return out
}

// depth counts hops to a root, stopping at unknown parents and cycles.
func depth(id string, byID map[string]*Category) int {
	visited := map[string]struct{}{id: {}}
	level := 0
	current := byID[id]
	for current != nil && current.ParentID != nil {
		parentID := *current.ParentID
		if _, seen := visited[parentID]; seen {
			break
		}
		visited[parentID] = struct{}{}
		level++
		current = byID[parentID]
	}
	return level
}
