package deadcode

// BuildGraph checks every ordered pair (A, B) with B canonical and A != B,
// recording each A -> B reference on both units. It returns the edge count.
// Non-class units take part as referrers only.
func BuildGraph(ix *Index, detector ReferenceDetector) int {
	edges := 0
	for _, to := range ix.Classes() {
		for _, from := range ix.Units() {
			if from.ID == to.ID {
				continue
			}
			if detector.References(from, to) {
				to.AddCaller(from)
				edges++
			}
		}
	}
	return edges
}
