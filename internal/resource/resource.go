// Package resource holds the two shapes every dashboard entity is built
// from: a paginated list (Lister) and a create/edit form (Form). A Resource
// value describes one entity type: its fields, relations, lookup tables,
// list columns and the contract functions that read and write it. The
// descriptor is the single source of truth for positional argument order.
package resource

import (
	"fmt"
	"sort"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/models"
)

type FieldKind int

const (
	KindText    FieldKind = iota
	KindNumber            // unsigned integer
	KindScaled            // decimal quantity, x100 on the ledger
	KindMoney             // rupiah amount, x100 on the ledger
	KindBool              // "true" / "false"
	KindClock             // HH:MM, minutes since midnight on the ledger
	KindDate              // YYYY-MM-DD, unix seconds on the ledger
	KindRef               // id of a record from a lookup table
	KindAddress           // 0x-prefixed wallet address
	KindIDs               // relation id set, columns only
)

// Field is one scalar input of a form.
type Field struct {
	Key         string
	Label       string
	Kind        FieldKind
	Rules       string // validator tags for the raw input
	NumRules    string // validator tags for the parsed number
	Placeholder string
	Lookup      string
	Default     string
	Virtual     bool // input only, feeds Derive/Serialize but is never read back
}

// Relation is a many-to-many membership sent as a whole id array.
type Relation struct {
	Key        string
	Label      string
	Lookup     string
	Get        string // secondary read returning the ids for a record; empty reads Key from the record
	Min        int
	MinMessage string
}

// Lookup is an auxiliary list read used to turn ids into names.
type Lookup struct {
	Name     string
	Call     string
	Args     []any
	LabelKey string
	Singular string
}

func (lk Lookup) labelKey() string {
	if lk.LabelKey == "" {
		return "name"
	}
	return lk.LabelKey
}

// Column is one cell of a list row.
type Column struct {
	Key    string
	Label  string
	Kind   FieldKind
	Lookup string
	Format func(rec ledger.Record, lk Lookups) string
}

// Filter is a list query input bound to the Param whose FilterKey is Key.
// Date filters bound to a To param cover the whole day.
type Filter struct {
	Key    string
	Label  string
	Kind   FieldKind
	Lookup string
}

type Calls struct {
	List        string
	ListParams  []Param
	Count       string
	CountParams []Param
	Get         string
	Create      string
	Update      string
	Delete      string
	Simulate    bool // dry-run create/update before sending
}

// ChildLink lets a list open another list filtered by the selected row.
type ChildLink struct {
	Resource string
	Key      string
	Label    string
}

type Resource struct {
	Name     string
	Title    string
	Singular string
	Section  string
	TitleKey string

	Fields    []Field
	Relations []Relation
	Columns   []Column
	Lookups   []Lookup
	Filters   []Filter
	Calls     Calls
	WriteArgs []string
	Child     *ChildLink

	Serialize func(in Input) ([]any, error)
	Derive    func(in Input) []models.Derived
	Populate  func(e Entry, v Values)
	Check     func(in Input) error
}

func (r *Resource) Field(key string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func (r *Resource) Relation(key string) (Relation, bool) {
	for _, rel := range r.Relations {
		if rel.Key == key {
			return rel, true
		}
	}
	return Relation{}, false
}

func (r *Resource) Lookup(name string) (Lookup, bool) {
	for _, lk := range r.Lookups {
		if lk.Name == name {
			return lk, true
		}
	}
	return Lookup{}, false
}

func (r *Resource) titleKey() string {
	if r.TitleKey == "" {
		return "name"
	}
	return r.TitleKey
}

// Placeholder names a record whose id is missing from a lookup.
func (r *Resource) Placeholder(id uint64) string {
	return fmt.Sprintf("%s #%d", r.Singular, id)
}

// Validate checks the descriptor for wiring mistakes.
func (r *Resource) Validate() error {
	if r.Name == "" || r.Calls.List == "" {
		return fmt.Errorf("resource %q: name and list call are required", r.Name)
	}
	for _, key := range r.WriteArgs {
		_, isField := r.Field(key)
		_, isRel := r.Relation(key)
		if !isField && !isRel && r.Serialize == nil {
			return fmt.Errorf("resource %q: write arg %q is neither field nor relation", r.Name, key)
		}
	}
	for _, f := range r.Fields {
		if f.Kind == KindRef && f.Lookup != "" {
			if _, ok := r.Lookup(f.Lookup); !ok {
				return fmt.Errorf("resource %q: field %q uses unknown lookup %q", r.Name, f.Key, f.Lookup)
			}
		}
	}
	for _, rel := range r.Relations {
		if _, ok := r.Lookup(rel.Lookup); !ok {
			return fmt.Errorf("resource %q: relation %q uses unknown lookup %q", r.Name, rel.Key, rel.Lookup)
		}
	}
	return nil
}

// Registry is the set of resources the dashboard knows about.
type Registry struct {
	list   []*Resource
	byName map[string]*Resource
}

func NewRegistry(resources ...*Resource) (*Registry, error) {
	reg := &Registry{byName: make(map[string]*Resource, len(resources))}
	for _, r := range resources {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := reg.byName[r.Name]; dup {
			return nil, fmt.Errorf("resource %q registered twice", r.Name)
		}
		reg.byName[r.Name] = r
		reg.list = append(reg.list, r)
	}
	return reg, nil
}

func (g *Registry) Get(name string) (*Resource, bool) {
	r, ok := g.byName[name]
	return r, ok
}

func (g *Registry) All() []*Resource {
	return g.list
}

// Names returns resource names in alphabetical order.
func (g *Registry) Names() []string {
	names := make([]string, 0, len(g.list))
	for _, r := range g.list {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}

// Sections groups resources by section, keeping registration order.
func (g *Registry) Sections() ([]string, map[string][]*Resource) {
	var order []string
	groups := make(map[string][]*Resource)
	for _, r := range g.list {
		if _, seen := groups[r.Section]; !seen {
			order = append(order, r.Section)
		}
		groups[r.Section] = append(groups[r.Section], r)
	}
	return order, groups
}
