package facet

import (
	"sort"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// Invalid is the zero Kind; a zero Value carries it.
	Invalid Kind = iota
	KindString
	KindList
	KindMap
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Value is one node of facet data: a string, an ordered list of values or
// a map from string keys to values. A Value never changes after it is
// built; constructors copy their inputs and accessors hand out copies.
type Value struct {
	kind   Kind
	str    string
	items  []Value
	fields map[string]Value
}

// String builds a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// List builds a list value from items.
func List(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, items: cp}
}

// Map builds a map value from fields. A nil map yields an empty map value.
func Map(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindMap, fields: cp}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v was built by one of the constructors.
func (v Value) IsValid() bool { return v.kind != Invalid }

// Str returns the text of a string value and false for other kinds.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Items returns a copy of the elements of a list value.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	cp := make([]Value, len(v.items))
	copy(cp, v.items)
	return cp
}

// Len returns the number of list elements or map fields.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.fields)
	default:
		return 0
	}
}

// Field looks up key in a map value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	f, ok := v.fields[key]
	return f, ok
}

// Keys returns the sorted keys of a map value.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fields returns a copy of the fields of a map value.
func (v Value) Fields() map[string]Value {
	if v.kind != KindMap {
		return nil
	}
	cp := make(map[string]Value, len(v.fields))
	for k, f := range v.fields {
		cp[k] = f
	}
	return cp
}

// Equal reports structural equality. Map key order is irrelevant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for k, f := range v.fields {
			g, ok := o.fields[k]
			if !ok || !f.Equal(g) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders v as compact JSON.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "<" + v.kind.String() + ">"
	}
	return string(b)
}

// joinPath appends a JSON-pointer style segment to path.
func joinPath(path, seg string) string {
	seg = strings.ReplaceAll(seg, "~", "~0")
	seg = strings.ReplaceAll(seg, "/", "~1")
	return path + "/" + seg
}
