package deadcode

import (
	"log/slog"

	"github.com/panbanda/phprune/pkg/models"
)

// Duplicate records units that claimed an already taken qualified name.
type Duplicate struct {
	QualifiedName string   `json:"qualified_name"`
	Canonical     string   `json:"canonical"`
	Demoted       []string `json:"demoted"`
}

// Index is the canonical view over one run's units. Units are addressed by
// ID, which always equals their position in the slice.
type Index struct {
	units      []*models.Unit
	classes    map[string]int
	imports    [][]*models.Unit
	resolved   []bool
	duplicates []Duplicate
}

// NewIndex numbers the units, neutralizes duplicate qualified names and
// builds the class map. It must run before any reference edge exists.
func NewIndex(units []*models.Unit) *Index {
	for i, u := range units {
		u.ID = i
		for _, m := range u.Methods {
			m.Owner = i
		}
	}

	ix := &Index{
		units:    units,
		classes:  make(map[string]int, len(units)),
		imports:  make([][]*models.Unit, len(units)),
		resolved: make([]bool, len(units)),
	}
	ix.duplicates = ResolveDuplicates(units)
	for _, u := range units {
		if u.IsClass() {
			ix.classes[u.QualifiedName()] = u.ID
		}
	}
	return ix
}

// ResolveDuplicates keeps the first unit declaring each qualified name and
// demotes every later one to a non-class unit.
func ResolveDuplicates(units []*models.Unit) []Duplicate {
	var dups []Duplicate
	for i, u := range units {
		if !u.IsClass() {
			continue
		}
		name := u.QualifiedName()
		var demoted []string
		for _, other := range units[i+1:] {
			if other.IsClass() && other.QualifiedName() == name {
				other.Demote()
				demoted = append(demoted, other.Path)
			}
		}
		if len(demoted) == 0 {
			continue
		}
		slog.Warn("duplicate qualified name",
			slog.String("name", name),
			slog.String("canonical", u.Path),
			slog.Any("demoted", demoted))
		dups = append(dups, Duplicate{QualifiedName: name, Canonical: u.Path, Demoted: demoted})
	}
	return dups
}

// Units returns every unit in ID order.
func (ix *Index) Units() []*models.Unit {
	return ix.units
}

// Unit returns the unit with the given ID.
func (ix *Index) Unit(id int) *models.Unit {
	return ix.units[id]
}

// Len returns the number of units.
func (ix *Index) Len() int {
	return len(ix.units)
}

// Lookup returns the canonical unit for a qualified name.
func (ix *Index) Lookup(name string) (*models.Unit, bool) {
	id, ok := ix.classes[name]
	if !ok {
		return nil, false
	}
	return ix.units[id], true
}

// Classes returns the canonical class-like units in ID order.
func (ix *Index) Classes() []*models.Unit {
	classes := make([]*models.Unit, 0, len(ix.classes))
	for _, u := range ix.units {
		if u.IsClass() {
			classes = append(classes, u)
		}
	}
	return classes
}

// Duplicates returns the duplicate groups found while indexing.
func (ix *Index) Duplicates() []Duplicate {
	return ix.duplicates
}

// Imports resolves the raw imports of a unit to canonical units, dropping
// names no unit declares. The result is memoized for the run.
func (ix *Index) Imports(id int) []*models.Unit {
	if ix.resolved[id] {
		return ix.imports[id]
	}
	var resolved []*models.Unit
	for _, name := range ix.units[id].RawImports {
		if u, ok := ix.Lookup(name); ok {
			resolved = append(resolved, u)
		}
	}
	ix.imports[id] = resolved
	ix.resolved[id] = true
	return resolved
}
