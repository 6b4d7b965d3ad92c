package deadcode

import (
	"math"
	"strings"

	"github.com/panbanda/phprune/pkg/models"
)

// noBackEdge is the lowest stack depth reported when an evaluation did not
// run into a unit that was still being computed.
const noBackEdge = math.MaxInt

// Engine computes class-level reachability over the caller graph.
//
// Results are memoized per unit for the lifetime of the engine. A unit whose
// evaluation ran into a cycle that closes above it on the evaluation stack
// is reported Unused but left unmemoized: the cycle may still resolve to
// Used once it is evaluated from the unit the cycle closes on.
type Engine struct {
	index   *Index
	ignored []string
	state   []models.Usage
	depth   []int
}

// NewEngine creates an engine over ix. Qualified names equal to or starting
// with an entry of ignored are always used.
func NewEngine(ix *Index, ignored []string) *Engine {
	return &Engine{
		index:   ix,
		ignored: ignored,
		state:   make([]models.Usage, ix.Len()),
		depth:   make([]int, ix.Len()),
	}
}

// Ignored reports whether a qualified name is on the always-used list.
func (e *Engine) Ignored(name string) bool {
	for _, prefix := range e.ignored {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Status returns the reachability of the unit with the given ID.
func (e *Engine) Status(id int) models.Usage {
	usage, _ := e.visit(id, 0)
	return usage
}

// IsUsed reports whether the unit with the given ID is reachable.
func (e *Engine) IsUsed(id int) bool {
	return e.Status(id) == models.UsageUsed
}

// Memoized returns the cached state of a unit without evaluating it.
func (e *Engine) Memoized(id int) models.Usage {
	return e.state[id]
}

// visit evaluates one unit at the given stack depth. Besides the usage it
// returns the lowest stack depth reached by a back-edge in the evaluation,
// or noBackEdge.
func (e *Engine) visit(id, depth int) (models.Usage, int) {
	u := e.index.Unit(id)
	if !u.IsClass() || e.Ignored(u.QualifiedName()) {
		return models.UsageUsed, noBackEdge
	}
	if u.Deprecated {
		e.state[id] = models.UsageUnused
		return models.UsageUnused, noBackEdge
	}
	if e.state[id].Resolved() {
		return e.state[id], noBackEdge
	}

	e.state[id] = models.UsageComputing
	e.depth[id] = depth
	low := noBackEdge

	for _, caller := range u.CallerIDs() {
		if e.state[caller] == models.UsageComputing {
			low = min(low, e.depth[caller])
			continue
		}
		usage, callerLow := e.visit(caller, depth+1)
		if usage == models.UsageUsed {
			e.state[id] = models.UsageUsed
			return models.UsageUsed, noBackEdge
		}
		low = min(low, callerLow)
	}

	if low < depth {
		e.state[id] = models.UsageUnknown
		return models.UsageUnused, low
	}
	e.state[id] = models.UsageUnused
	return models.UsageUnused, noBackEdge
}
