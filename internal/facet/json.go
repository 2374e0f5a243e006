package facet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/jsonc"
)

// FromJSON converts a generic value produced by encoding/json (string,
// []any, map[string]any) into a Value. Any nested number, boolean or null
// fails the whole conversion with a *ConversionError.
func FromJSON(doc any) (Value, error) {
	return fromJSON(doc, "")
}

func fromJSON(doc any, path string) (Value, error) {
	switch t := doc.(type) {
	case string:
		return String(t), nil
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			v, err := fromJSON(e, joinPath(path, strconv.Itoa(i)))
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindList, items: items}, nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			v, err := fromJSON(e, joinPath(path, k))
			if err != nil {
				return Value{}, err
			}
			fields[k] = v
		}
		return Value{kind: KindMap, fields: fields}, nil
	default:
		return Value{}, &ConversionError{Path: path, Type: jsonTypeName(doc)}
	}
}

// ToJSON converts v back into the generic encoding/json representation.
// It is the structural inverse of FromJSON. An invalid Value yields nil.
func ToJSON(v Value) any {
	switch v.kind {
	case KindString:
		return v.str
	case KindList:
		out := make([]any, len(v.items))
		for i, e := range v.items {
			out[i] = ToJSON(e)
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.fields))
		for k, e := range v.fields {
			out[k] = ToJSON(e)
		}
		return out
	default:
		return nil
	}
}

// Parse decodes a JSON (or JSONC) document into a Value.
func Parse(data []byte) (Value, error) {
	doc, err := decodeJSON(data, true)
	if err != nil {
		return Value{}, err
	}
	return FromJSON(doc)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid facet value")
	}
	return json.Marshal(ToJSON(v))
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// decodeJSON parses a single JSON value. With jsoncOK set, comments and
// trailing commas are stripped first. Trailing garbage after the first
// value is rejected.
func decodeJSON(data []byte, jsoncOK bool) (any, error) {
	if jsoncOK {
		data = jsonc.ToJSON(data)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level JSON value")
	}
	return doc, nil
}

// DecodeJSON parses strict JSON into its generic form for callers that walk
// the top-level value themselves. Comments and trailing commas are errors.
func DecodeJSON(data []byte) (any, error) {
	return decodeJSON(data, false)
}

func jsonTypeName(doc any) string {
	switch doc.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", doc)
	}
}
