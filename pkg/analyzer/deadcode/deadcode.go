package deadcode

import (
	"log/slog"

	"github.com/panbanda/phprune/pkg/models"
)

// DetectorFactory builds the reference detector for an index.
type DetectorFactory func(*Index) ReferenceDetector

// Analyzer finds unreachable classes and methods among loaded units.
//
// Analysis runs in four phases: index (duplicate resolution), uses-graph
// construction, class reachability, then method usage for reachable units.
type Analyzer struct {
	ignored          []string
	ignoredFunc      []string
	ignoredFuncNames []string
	detector         DetectorFactory
	logger           *slog.Logger
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithIgnored sets qualified names and prefixes that are always used.
func WithIgnored(names []string) Option {
	return func(a *Analyzer) {
		a.ignored = names
	}
}

// WithIgnoredFunc sets prefixes of units excluded from unused-method
// reporting, in addition to the always-used list.
func WithIgnoredFunc(prefixes []string) Option {
	return func(a *Analyzer) {
		a.ignoredFunc = prefixes
	}
}

// WithIgnoredFuncNames sets method names that are always used.
func WithIgnoredFuncNames(names []string) Option {
	return func(a *Analyzer) {
		a.ignoredFuncNames = names
	}
}

// WithDetector replaces the heuristic reference detector.
func WithDetector(factory DetectorFactory) Option {
	return func(a *Analyzer) {
		a.detector = factory
	}
}

// WithLogger sets the logger used for phase diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		detector: func(ix *Index) ReferenceDetector { return NewHeuristicDetector(ix) },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result holds the classification of one analysis run.
type Result struct {
	Index   *Index
	Engine  *Engine
	Methods *MethodUsage

	Ignored    []string
	Duplicates []Duplicate
	Edges      int

	// Used and Unused partition the canonical class-like units.
	Used   []*models.Unit
	Unused []*models.Unit
	// InvalidRoots are unused units that nothing references.
	InvalidRoots []*models.Unit
	// LiveRoots are unused, non-deprecated units referenced by deprecated
	// units only: the roots left once deprecated code is gone.
	LiveRoots []*models.Unit

	UnusedMethods     []*models.Method
	UnusedMethodLines int
}

// Analyze runs every phase over units. Unit IDs are renumbered to their
// position in the slice.
func (a *Analyzer) Analyze(units []*models.Unit) *Result {
	ix := NewIndex(units)
	a.logger.Debug("indexed units",
		slog.Int("units", ix.Len()),
		slog.Int("classes", len(ix.classes)),
		slog.Int("duplicates", len(ix.Duplicates())))

	edges := BuildGraph(ix, a.detector(ix))
	a.logger.Debug("built uses-graph", slog.Int("edges", edges))

	engine := NewEngine(ix, a.ignored)
	r := &Result{
		Index:      ix,
		Engine:     engine,
		Ignored:    a.ignored,
		Duplicates: ix.Duplicates(),
		Edges:      edges,
	}
	r.classify()

	skip := append(append([]string{}, a.ignored...), a.ignoredFunc...)
	r.Methods = NewMethodUsage(ix, engine, a.ignoredFuncNames, skip)
	for _, u := range r.Used {
		r.Methods.Link(u)
	}
	for _, u := range r.Used {
		for _, m := range r.Methods.Unused(u) {
			r.UnusedMethods = append(r.UnusedMethods, m)
			r.UnusedMethodLines += m.Lines()
		}
	}
	a.logger.Debug("classified",
		slog.Int("used", len(r.Used)),
		slog.Int("unused", len(r.Unused)),
		slog.Int("invalid_roots", len(r.InvalidRoots)),
		slog.Int("unused_methods", len(r.UnusedMethods)))
	return r
}
