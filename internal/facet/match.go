package facet

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Filter maps a facet type to the criterion its facet data must satisfy.
// A nil criterion only requires the facet to exist.
type Filter map[string]*Value

// ParseFilter builds a Filter from JSON fragments keyed by facet type.
// An empty fragment or a JSON null means "facet must exist".
func ParseFilter(fragments map[string]string) (Filter, error) {
	f := make(Filter, len(fragments))
	for facetType, frag := range fragments {
		crit, err := ParseCriterion(frag)
		if err != nil {
			return nil, fmt.Errorf("invalid filter for facet %s: %w", facetType, err)
		}
		f[facetType] = crit
	}
	return f, nil
}

// ParseCriterion parses one filter fragment. It returns nil for an
// existence-only criterion.
func ParseCriterion(fragment string) (*Value, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, nil
	}
	doc, err := decodeJSON([]byte(fragment), true)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	v, err := FromJSON(doc)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Types returns the facet types named by the filter in sorted order.
func (f Filter) Types() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether value satisfies filter under subset semantics:
//
//   - a nil filter matches anything;
//   - values of different kinds never match;
//   - a map filter matches when each of its keys is present in value and
//     matches recursively (extra keys in value are ignored);
//   - strings match on equality;
//   - two lists cannot be compared and yield an *UnsupportedFilterError.
func Matches(value Value, filter *Value) (bool, error) {
	return matches(value, filter, "")
}

func matches(value Value, filter *Value, path string) (bool, error) {
	if filter == nil {
		return true, nil
	}
	if value.kind != filter.kind {
		return false, nil
	}
	switch filter.kind {
	case KindMap:
		for _, k := range filter.Keys() {
			got, ok := value.fields[k]
			if !ok {
				return false, nil
			}
			want := filter.fields[k]
			ok, err := matches(got, &want, joinPath(path, k))
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case KindList:
		return false, &UnsupportedFilterError{Path: path}
	case KindString:
		return value.str == filter.str, nil
	default:
		return false, nil
	}
}

// ManifestMatches reports whether facets satisfy every entry of f. A facet
// type missing from facets is a non-match; evaluation stops at the first
// facet type that does not match. An empty filter matches everything.
func ManifestMatches(facets map[string]Value, f Filter) (bool, error) {
	for _, facetType := range f.Types() {
		data, ok := facets[facetType]
		if !ok {
			return false, nil
		}
		ok, err := Matches(data, f[facetType])
		if err != nil {
			var ue *UnsupportedFilterError
			if errors.As(err, &ue) {
				ue.Facet = facetType
			}
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
