package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/panbanda/phprune/internal/output"
	"github.com/panbanda/phprune/pkg/analyzer/deadcode"
	"github.com/panbanda/phprune/pkg/models"
)

// Branch is an unreachable unit and the unreachable units it calls that
// were not printed earlier.
type Branch struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	Deprecated bool     `json:"deprecated,omitempty"`
	Children   []Branch `json:"children,omitempty"`
}

// Branches is the invalid-branch tree. Every unit appears at most once
// across all roots.
type Branches struct {
	Roots  []Branch `json:"roots"`
	Unused int      `json:"unused"`
}

// NewBranches builds the tree from the root set of r. Without deprecated
// findings, deprecated units are left out.
func NewBranches(r *deadcode.Result, includeDeprecated bool) *Branches {
	b := &Branches{}
	for _, u := range r.Unused {
		if includeDeprecated || !u.Deprecated {
			b.Unused++
		}
	}

	found := make(map[int]bool)
	var walk func(u *models.Unit) Branch
	walk = func(u *models.Unit) Branch {
		found[u.ID] = true
		node := Branch{Name: u.QualifiedName(), Path: u.Path, Deprecated: u.Deprecated}
		for _, id := range u.CalledIDs() {
			called := r.Index.Unit(id)
			if found[id] || r.IsUsed(called) || (called.Deprecated && !includeDeprecated) {
				continue
			}
			node.Children = append(node.Children, walk(called))
		}
		return node
	}
	for _, root := range r.Roots(includeDeprecated) {
		if found[root.ID] {
			continue
		}
		b.Roots = append(b.Roots, walk(root))
	}
	return b
}

// Len returns the number of root branches.
func (b *Branches) Len() int { return len(b.Roots) }

func (b *Branches) RenderData() any { return b }

func (b *Branches) RenderText(w io.Writer, colored bool) error {
	output.Heading(w, colored, "%d INVALID BRANCHES (%d unused)", len(b.Roots), b.Unused)
	for _, root := range b.Roots {
		writeBranch(w, root, 0, colored)
	}
	return nil
}

func writeBranch(w io.Writer, b Branch, level int, colored bool) {
	name := b.Name
	if colored && b.Deprecated {
		name = color.YellowString(name)
	}
	if level == 0 {
		fmt.Fprintln(w, name)
	} else {
		fmt.Fprintf(w, "%s ∟ %s\n", strings.Repeat(" ", (level-1)*2), name)
	}
	for _, child := range b.Children {
		writeBranch(w, child, level+1, colored)
	}
}

func (b *Branches) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## Invalid branches (%d, %d unused)\n\n", len(b.Roots), b.Unused)
	var walk func(b Branch, level int)
	walk = func(b Branch, level int) {
		fmt.Fprintf(w, "%s- `%s`\n", strings.Repeat("  ", level), b.Name)
		for _, child := range b.Children {
			walk(child, level+1)
		}
	}
	for _, root := range b.Roots {
		walk(root, 0)
	}
	fmt.Fprintln(w)
	return nil
}
