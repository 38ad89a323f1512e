// Package patch models partial edits of WITSML object fields. Each field is either left
// alone, cleared, or set to a new value, which maps to an absent key, a JSON null and a
// JSON value respectively.
package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Op is the kind of edit applied to one field.
type Op uint8

const (
	Unchanged Op = iota
	Cleared
	SetTo
)

// Field is the edit of a single field.
type Field struct {
	Op    Op
	Value string
}

// Set returns an edit that assigns v.
func Set(v string) Field { return Field{Op: SetTo, Value: v} }

// Clear returns an edit that removes the field's value.
func Clear() Field { return Field{Op: Cleared} }

// Patch maps field names to edits. A field not in the map is unchanged.
type Patch map[string]Field

// Apply returns a copy of fields with the edits applied. Only names listed in allowed may
// be edited; an empty allowed list permits every field.
func (p Patch) Apply(fields map[string]string, allowed ...string) (map[string]string, error) {
	if len(allowed) > 0 {
		ok := make(map[string]struct{}, len(allowed))
		for _, a := range allowed {
			ok[a] = struct{}{}
		}
		for name, f := range p {
			if _, permitted := ok[name]; !permitted && f.Op != Unchanged {
				return nil, fmt.Errorf("field %q cannot be edited", name)
			}
		}
	}

	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for name, f := range p {
		switch f.Op {
		case SetTo:
			out[name] = f.Value
		case Cleared:
			delete(out, name)
		}
	}
	return out, nil
}

// Changed lists the edited field names in sorted order.
func (p Patch) Changed() []string {
	var names []string
	for name, f := range p {
		if f.Op != Unchanged {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// MarshalJSON writes set fields as strings and cleared fields as null.
func (p Patch) MarshalJSON() ([]byte, error) {
	raw := make(map[string]*string, len(p))
	for name, f := range p {
		switch f.Op {
		case SetTo:
			v := f.Value
			raw[name] = &v
		case Cleared:
			raw[name] = nil
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON reads null as Cleared and a string as SetTo. Numbers and booleans are
// kept in their JSON text form.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Patch, len(raw))
	for name, msg := range raw {
		if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			out[name] = Clear()
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			out[name] = Set(s)
			continue
		}
		var scalar any
		if err := json.Unmarshal(msg, &scalar); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		switch scalar.(type) {
		case float64, bool:
			out[name] = Set(string(bytes.TrimSpace(msg)))
		default:
			return fmt.Errorf("field %q: expected a string, number, boolean or null", name)
		}
	}
	*p = out
	return nil
}
