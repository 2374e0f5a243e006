package facet

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var valueComparer = cmp.Comparer(func(a, b Value) bool { return a.Equal(b) })

// genValue draws a facet value at most depth levels deep. Lists are only
// produced when withLists is set.
func genValue(depth int, withLists bool) *rapid.Generator[Value] {
	return rapid.Custom(func(t *rapid.T) Value {
		maxKind := 0
		if depth > 0 {
			maxKind = 2
		}
		kind := rapid.IntRange(0, maxKind).Draw(t, "kind")
		if kind == 1 && !withLists {
			kind = 2
		}
		switch kind {
		case 1:
			n := rapid.IntRange(0, 3).Draw(t, "len")
			items := make([]Value, n)
			for i := range items {
				items[i] = genValue(depth-1, withLists).Draw(t, "item")
			}
			return List(items...)
		case 2:
			keys := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,4}`), 0, 4, rapid.ID[string]).Draw(t, "keys")
			fields := make(map[string]Value, len(keys))
			for _, k := range keys {
				fields[k] = genValue(depth-1, withLists).Draw(t, "field")
			}
			return Map(fields)
		default:
			return String(rapid.String().Draw(t, "str"))
		}
	})
}

func TestFromJSON_Shapes(t *testing.T) {
	v, err := Parse([]byte(`{"name":"hello","tags":["a","b"],"role":{"kind":"service"}}`))
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind())
	assert.Equal(t, []string{"name", "role", "tags"}, v.Keys())

	tags, ok := v.Field("tags")
	require.True(t, ok)
	assert.Equal(t, KindList, tags.Kind())
	assert.Equal(t, 2, tags.Len())

	role, _ := v.Field("role")
	kind, _ := role.Field("kind")
	s, ok := kind.Str()
	require.True(t, ok)
	assert.Equal(t, "service", s)
}

func TestFromJSON_RejectsScalars(t *testing.T) {
	cases := map[string]struct {
		doc  string
		path string
		typ  string
	}{
		"number":        {`12`, "", "number"},
		"bool":          {`true`, "", "boolean"},
		"null":          {`null`, "", "null"},
		"nested number": {`{"a":{"b":[ "x", 3 ]}}`, "/a/b/1", "number"},
		"escaped key":   {`{"a/b":false}`, "/a~1b", "boolean"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			var ce *ConversionError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tc.path, ce.Path)
			assert.Equal(t, tc.typ, ce.Type)
		})
	}
}

func TestParse_AcceptsComments(t *testing.T) {
	v, err := Parse([]byte("{\n  // identity\n  \"name\": \"x\",\n}"))
	require.NoError(t, err)
	name, _ := v.Field("name")
	assert.Equal(t, "\"x\"", name.String())
}

func TestDecodeJSON_IsStrict(t *testing.T) {
	for _, doc := range []string{`{"a":"b",}`, "{\"a\":\"b\"} // note", "// note\n{}"} {
		_, err := DecodeJSON([]byte(doc))
		assert.Error(t, err, doc)
	}
	doc, err := DecodeJSON([]byte(`{"a":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "b"}, doc)
}

func TestParse_RejectsTrailingData(t *testing.T) {
	_, err := Parse([]byte(`"a" "b"`))
	require.Error(t, err)
}

func TestValue_ImmutableAfterConstruction(t *testing.T) {
	items := []Value{String("a")}
	l := List(items...)
	items[0] = String("b")
	got, _ := l.Items()[0].Str()
	assert.Equal(t, "a", got)

	fields := map[string]Value{"k": String("v")}
	m := Map(fields)
	fields["k"] = String("changed")
	m.Fields()["k"] = String("changed too")
	f, _ := m.Field("k")
	got, _ = f.Str()
	assert.Equal(t, "v", got)
}

func TestValue_MarshalRoundTrip(t *testing.T) {
	in := Map(map[string]Value{
		"url":  String("https://example.com/a"),
		"deps": List(String("x"), Map(nil)),
	})
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Value
	require.NoError(t, json.Unmarshal(b, &out))
	if diff := cmp.Diff(in, out, valueComparer); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValue_MarshalInvalid(t *testing.T) {
	_, err := json.Marshal(Value{})
	require.Error(t, err)
}

func TestJSONRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := genValue(3, true).Draw(rt, "value")
		back, err := FromJSON(ToJSON(v))
		if err != nil {
			rt.Fatalf("FromJSON(ToJSON(v)): %v", err)
		}
		if !v.Equal(back) {
			rt.Fatalf("round trip changed value: %s -> %s", v, back)
		}

		b, err := v.MarshalJSON()
		if err != nil {
			rt.Fatalf("marshal: %v", err)
		}
		parsed, err := Parse(b)
		if err != nil {
			rt.Fatalf("parse %s: %v", b, err)
		}
		if !v.Equal(parsed) {
			rt.Fatalf("byte round trip changed value: %s -> %s", v, parsed)
		}
	})
}
