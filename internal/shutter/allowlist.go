package shutter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Wildcard grants every member of a category.
const Wildcard = "*"

// Grant lists the members of one host type that script code may see, by Go name.
type Grant struct {
	Type         string   `toml:"type"         yaml:"type"`
	Fields       []string `toml:"fields"       yaml:"fields"`
	Methods      []string `toml:"methods"      yaml:"methods"`
	Constructors []string `toml:"constructors" yaml:"constructors"`
}

// Document is the on-disk allow-list layout.
//
//	[[grant]]
//	type = "github.com/example/geo.Point"
//	fields = ["X", "Y"]
//	methods = ["*"]
type Document struct {
	Grants []Grant `toml:"grant" yaml:"grants"`
}

type grantSet struct {
	fields       map[string]bool
	methods      map[string]bool
	constructors map[string]bool
}

func newNameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = true
		}
	}
	return set
}

func (g grantSet) allows(set map[string]bool, name string) bool {
	return set[Wildcard] || set[name]
}

// AllowList is an immutable set of grants keyed by qualified type name. Each *AllowList is its
// own cache identity.
type AllowList struct {
	grants map[string]grantSet
	source string
}

// NewAllowList builds an AllowList. Grants for the same type are merged.
func NewAllowList(grants ...Grant) (*AllowList, error) {
	a := &AllowList{grants: make(map[string]grantSet, len(grants))}

	var errs []error
	for i, g := range grants {
		name := strings.TrimSpace(g.Type)
		if name == "" {
			errs = append(errs, fmt.Errorf("%w: grant %d", ErrEmptyTypeName, i))
			continue
		}
		existing, ok := a.grants[name]
		if !ok {
			existing = grantSet{
				fields:       map[string]bool{},
				methods:      map[string]bool{},
				constructors: map[string]bool{},
			}
		}
		for n := range newNameSet(g.Fields) {
			existing.fields[n] = true
		}
		for n := range newNameSet(g.Methods) {
			existing.methods[n] = true
		}
		for n := range newNameSet(g.Constructors) {
			existing.constructors[n] = true
		}
		a.grants[name] = existing
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return a, nil
}

// LoadFile reads an allow-list from a .toml, .yaml or .yml file.
func LoadFile(path string) (*AllowList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read allow-list %s: %w", path, err)
	}
	a, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load allow-list %s: %w", path, err)
	}
	a.source = path
	return a, nil
}

// Parse decodes an allow-list document. format is a file extension such as ".toml" or "yaml".
func Parse(data []byte, format string) (*AllowList, error) {
	var doc Document
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode TOML: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return NewAllowList(doc.Grants...)
}

// Source returns the file the list was loaded from, if any.
func (a *AllowList) Source() string { return a.source }

// Types returns the granted type names, sorted.
func (a *AllowList) Types() []string {
	names := make([]string, 0, len(a.grants))
	for name := range a.grants {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (a *AllowList) lookup(t reflect.Type) (grantSet, bool) {
	if a == nil || t == nil {
		return grantSet{}, false
	}
	g, ok := a.grants[TypeName(t)]
	return g, ok
}

func (a *AllowList) FieldVisible(t reflect.Type, f reflect.StructField) bool {
	g, ok := a.lookup(t)
	return ok && g.allows(g.fields, f.Name)
}

func (a *AllowList) MethodVisible(t reflect.Type, m reflect.Method) bool {
	g, ok := a.lookup(t)
	return ok && g.allows(g.methods, m.Name)
}

func (a *AllowList) ConstructorVisible(t reflect.Type, name string, _ reflect.Type) bool {
	g, ok := a.lookup(t)
	return ok && g.allows(g.constructors, name)
}
