package deadcode

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/panbanda/phprune/pkg/models"
)

// UnusedCycles returns the strongly connected components of two or more
// unused units: groups that only reference each other. Components are
// ordered by their lowest unit ID, members by ID.
func UnusedCycles(ix *Index, engine *Engine) [][]*models.Unit {
	g := simple.NewDirectedGraph()
	unused := make(map[int]bool)
	for _, u := range ix.Classes() {
		if engine.Status(u.ID) == models.UsageUnused {
			unused[u.ID] = true
			g.AddNode(simple.Node(u.ID))
		}
	}
	for from := range unused {
		for _, to := range ix.Unit(from).CalledIDs() {
			if unused[to] && to != from {
				g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
			}
		}
	}

	var cycles [][]*models.Unit
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		members := make([]*models.Unit, len(scc))
		for i, n := range scc {
			members[i] = ix.Unit(int(n.ID()))
		}
		slices.SortFunc(members, func(a, b *models.Unit) int { return a.ID - b.ID })
		cycles = append(cycles, members)
	}
	slices.SortFunc(cycles, func(a, b []*models.Unit) int { return a[0].ID - b[0].ID })
	return cycles
}
