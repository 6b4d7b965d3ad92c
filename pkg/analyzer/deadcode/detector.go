package deadcode

import (
	"strings"

	"github.com/panbanda/phprune/pkg/models"
)

// ReferenceDetector decides whether one unit references another.
type ReferenceDetector interface {
	References(from, to *models.Unit) bool
}

// Occurrence thresholds. An import statement mentions the imported name
// once, so a real use needs a second mention; when the target's name is
// part of the referrer's own name, the declaration adds one more.
const (
	importedUses     = 2
	importedSelfUses = 3
	localSelfUses    = 2
	aliasUses        = 2
)

// HeuristicDetector finds references by counting textual occurrences of
// short names and aliases, guided by the referrer's imports.
type HeuristicDetector struct {
	index *Index
}

// NewHeuristicDetector creates a detector resolving imports through ix.
func NewHeuristicDetector(ix *Index) *HeuristicDetector {
	return &HeuristicDetector{index: ix}
}

// References implements ReferenceDetector.
func (d *HeuristicDetector) References(from, to *models.Unit) bool {
	if !from.IsClass() {
		return strings.Contains(from.Content, to.ShortName)
	}

	for _, imp := range d.index.Imports(from.ID) {
		if imp.ID == to.ID {
			if alias, ok := from.Aliases[to.QualifiedName()]; ok {
				return strings.Count(from.Content, alias) >= aliasUses
			}
			need := importedUses
			if strings.Contains(from.ShortName, to.ShortName) {
				need = importedSelfUses
			}
			return strings.Count(from.Content, to.ShortName) >= need
		}
		// An imported shorter name that is part of the target's name wins:
		// the mentions are taken to be of the import.
		if _, aliased := from.Aliases[imp.QualifiedName()]; !aliased && strings.Contains(to.ShortName, imp.ShortName) {
			return false
		}
	}

	if strings.Contains(from.ShortName, to.ShortName) {
		return strings.Count(from.Content, to.ShortName) >= localSelfUses
	}
	return strings.Contains(from.Content, to.ShortName)
}
