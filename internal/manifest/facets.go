package manifest

import "github.com/kamusis/cindex-cli/internal/facet"

// Standard facet types.
const (
	ComponentFacet = "fuchsia:component"
	ResourcesFacet = "fuchsia:resources"
	ProgramFacet   = "fuchsia:program"
)

// Component is the identity facet of a manifest.
type Component struct {
	URL           string
	Name          string
	Version       string
	OtherVersions string
}

// Program describes how to run a component.
type Program struct {
	Resource string
	Runner   string
	Name     string
}

// Component returns the identity facet. Fields that are absent or not
// strings are left empty.
func (m *Manifest) Component() (Component, bool) {
	v, ok := m.Facets[ComponentFacet]
	if !ok {
		return Component{}, false
	}
	return Component{
		URL:           stringField(v, "url"),
		Name:          stringField(v, "name"),
		Version:       stringField(v, "version"),
		OtherVersions: stringField(v, "other_versions"),
	}, true
}

// Program returns the program facet.
func (m *Manifest) Program() (Program, bool) {
	v, ok := m.Facets[ProgramFacet]
	if !ok {
		return Program{}, false
	}
	return Program{
		Resource: stringField(v, "resource"),
		Runner:   stringField(v, "runner"),
		Name:     stringField(v, "name"),
	}, true
}

func stringField(v facet.Value, key string) string {
	f, ok := v.Field(key)
	if !ok {
		return ""
	}
	s, _ := f.Str()
	return s
}
