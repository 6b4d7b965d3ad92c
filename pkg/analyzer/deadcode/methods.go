package deadcode

import (
	"slices"
	"strings"

	"github.com/panbanda/phprune/pkg/models"
)

// Method-name thresholds: the declaration itself is one mention.
const (
	ownUses      = 2
	overrideUses = 2
	foreignUses  = 1
)

// MethodUsage links methods of reachable units to the units calling them.
type MethodUsage struct {
	index       *Index
	engine      *Engine
	names       map[string]bool
	skipPrefix  []string
	lowered     []string
	linkedUnits []bool
}

// NewMethodUsage creates the method-level analysis. alwaysUsed lists method
// names that are always considered used; skipPrefixes excludes units from
// unused-method reporting by qualified-name prefix.
func NewMethodUsage(ix *Index, engine *Engine, alwaysUsed, skipPrefixes []string) *MethodUsage {
	names := make(map[string]bool, len(alwaysUsed))
	for _, n := range alwaysUsed {
		names[n] = true
	}
	lowered := make([]string, ix.Len())
	for i, u := range ix.Units() {
		lowered[i] = strings.ToLower(u.Content)
	}
	return &MethodUsage{
		index:       ix,
		engine:      engine,
		names:       names,
		skipPrefix:  skipPrefixes,
		lowered:     lowered,
		linkedUnits: make([]bool, ix.Len()),
	}
}

// Link records method callers for owner, which must be a used class-like
// unit. Other units are left untouched.
func (mu *MethodUsage) Link(owner *models.Unit) {
	if !owner.IsClass() || mu.linkedUnits[owner.ID] || !mu.engine.IsUsed(owner.ID) {
		return
	}
	mu.linkedUnits[owner.ID] = true

	var visible []*models.Method
	for _, m := range owner.Methods {
		if m.Overridable() {
			visible = append(visible, m)
		}
	}

	for _, f := range mu.index.Units() {
		text := mu.lowered[f.ID]
		switch {
		case f.ID == owner.ID:
			for _, m := range owner.Methods {
				if countLower(text, m.Name) >= ownUses {
					m.Callers.Add(uint32(f.ID))
				}
			}
		case owner.Parent != "" && owner.Parent == f.ShortName:
			// The base class calling an overridable method.
			for _, m := range visible {
				if countLower(text, m.Name) >= overrideUses {
					m.Callers.Add(uint32(f.ID))
				}
			}
		case f.Parent != "" && f.Parent == owner.ShortName:
			for _, m := range visible {
				need := foreignUses
				if f.Method(m.Name) != nil {
					need = overrideUses
				}
				if countLower(text, m.Name) >= need {
					m.Callers.Add(uint32(f.ID))
				}
			}
		default:
			for _, m := range visible {
				if other := f.Method(m.Name); other != nil && f.Kind != models.KindInterface && !other.CallsSelf {
					continue
				}
				if countLower(text, m.Name) >= foreignUses {
					m.Callers.Add(uint32(f.ID))
				}
			}
		}
	}
}

// IsUsed reports whether a method is reachable.
func (mu *MethodUsage) IsUsed(m *models.Method) bool {
	if mu.names[m.Name] {
		return true
	}
	if m.Deprecated {
		return false
	}
	if mu.index.Unit(m.Owner).ReflexiveCall {
		return true
	}
	for _, caller := range m.CallerIDs() {
		if mu.engine.IsUsed(caller) {
			return true
		}
	}
	return false
}

// Reportable reports whether owner takes part in unused-method reporting.
func (mu *MethodUsage) Reportable(owner *models.Unit) bool {
	if !owner.IsClass() || owner.Kind == models.KindInterface {
		return false
	}
	name := owner.QualifiedName()
	return !slices.ContainsFunc(mu.skipPrefix, func(prefix string) bool {
		return strings.HasPrefix(name, prefix)
	})
}

// Unused returns the unused methods of owner in declaration order.
func (mu *MethodUsage) Unused(owner *models.Unit) []*models.Method {
	if !mu.Reportable(owner) {
		return nil
	}
	var unused []*models.Method
	for _, m := range owner.Methods {
		if !mu.IsUsed(m) {
			unused = append(unused, m)
		}
	}
	return unused
}

// countLower counts name in already lower-cased text.
func countLower(text, name string) int {
	if name == "" {
		return 0
	}
	return strings.Count(text, strings.ToLower(name))
}
