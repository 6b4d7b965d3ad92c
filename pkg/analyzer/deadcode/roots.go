package deadcode

import (
	"slices"

	"github.com/panbanda/phprune/pkg/models"
)

// classify fills the used/unused partition and both root sets.
//
// A root is an unused unit that nothing else keeps referenced: a unit with
// no callers, or every member of a closed unused cycle, whose callers all
// belong to the cycle itself.
func (r *Result) classify() {
	for _, u := range r.Index.Classes() {
		if r.Engine.IsUsed(u.ID) {
			r.Used = append(r.Used, u)
			continue
		}
		r.Unused = append(r.Unused, u)
		if u.Callers.IsEmpty() {
			r.InvalidRoots = append(r.InvalidRoots, u)
		}
		if !u.Deprecated && r.callersWithin(u, nil, true) {
			r.LiveRoots = append(r.LiveRoots, u)
		}
	}

	for _, cycle := range r.Cycles() {
		members := make(map[int]bool, len(cycle))
		for _, u := range cycle {
			members[u.ID] = true
		}
		closed, live := true, true
		for _, u := range cycle {
			closed = closed && r.callersWithin(u, members, false)
			live = live && r.callersWithin(u, members, true)
		}
		for _, u := range cycle {
			if closed && !slices.Contains(r.InvalidRoots, u) {
				r.InvalidRoots = append(r.InvalidRoots, u)
			}
			if live && !u.Deprecated && !slices.Contains(r.LiveRoots, u) {
				r.LiveRoots = append(r.LiveRoots, u)
			}
		}
	}

	byID := func(a, b *models.Unit) int { return a.ID - b.ID }
	slices.SortFunc(r.InvalidRoots, byID)
	slices.SortFunc(r.LiveRoots, byID)
}

// callersWithin reports whether every caller of u is in members or, when
// deprecated is set, a deprecated class-like unit.
func (r *Result) callersWithin(u *models.Unit, members map[int]bool, deprecated bool) bool {
	for _, id := range u.CallerIDs() {
		if members[id] {
			continue
		}
		caller := r.Index.Unit(id)
		if deprecated && caller.IsClass() && caller.Deprecated {
			continue
		}
		return false
	}
	return true
}

// IsUsed reports whether u is reachable. Non-class units always are.
func (r *Result) IsUsed(u *models.Unit) bool {
	return r.Engine.IsUsed(u.ID)
}

// Roots returns the units removal and branch reports start from. Without
// deprecated findings, deprecated units are skipped and the units they
// alone kept referenced become roots instead.
func (r *Result) Roots(includeDeprecated bool) []*models.Unit {
	if includeDeprecated {
		return r.InvalidRoots
	}
	return r.LiveRoots
}

// Cycles returns groups of unused units that only reference each other.
func (r *Result) Cycles() [][]*models.Unit {
	return UnusedCycles(r.Index, r.Engine)
}

// UnusedMethodsOf returns the unused methods of a used unit.
func (r *Result) UnusedMethodsOf(u *models.Unit) []*models.Method {
	if !r.IsUsed(u) {
		return nil
	}
	return r.Methods.Unused(u)
}
