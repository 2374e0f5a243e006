package manifest

import (
	"fmt"
	"net/url"

	"github.com/kamusis/cindex-cli/internal/facet"
)

// Resources resolves the resources facet of m into absolute URLs keyed by
// resource name. Relative references are resolved against the component
// URL, or against the manifest identifier when the component facet has no
// URL. A manifest without a resources facet yields an empty map.
func Resources(m *Manifest) (map[string]string, error) {
	v, ok := m.Facets[ResourcesFacet]
	if !ok {
		return map[string]string{}, nil
	}
	if v.Kind() != facet.KindMap {
		return nil, fmt.Errorf("manifest %s: %s facet is a %s, want a map", m.ID, ResourcesFacet, v.Kind())
	}

	baseRef := m.ID
	if c, ok := m.Component(); ok && c.URL != "" {
		baseRef = c.URL
	}
	base, err := url.Parse(baseRef)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: invalid base URL %q: %w", m.ID, baseRef, err)
	}

	out := make(map[string]string, v.Len())
	for _, name := range v.Keys() {
		ref, _ := v.Field(name)
		s, ok := ref.Str()
		if !ok {
			return nil, fmt.Errorf("manifest %s: resource %q is a %s, want a string", m.ID, name, ref.Kind())
		}
		rel, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: resource %q: %w", m.ID, name, err)
		}
		out[name] = base.ResolveReference(rel).String()
	}
	return out, nil
}
