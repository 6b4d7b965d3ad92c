package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/panbanda/phprune/internal/output"
	"github.com/panbanda/phprune/pkg/analyzer/deadcode"
)

// Cycles lists groups of unused units that only keep each other referenced.
type Cycles struct {
	Groups [][]string `json:"groups"`
}

// NewCycles collects the unreachable cycles of r by qualified name.
func NewCycles(r *deadcode.Result) *Cycles {
	c := &Cycles{Groups: [][]string{}}
	for _, cycle := range r.Cycles() {
		names := make([]string, len(cycle))
		for i, u := range cycle {
			names[i] = u.QualifiedName()
		}
		c.Groups = append(c.Groups, names)
	}
	return c
}

func (c *Cycles) RenderData() any { return c.Groups }

func (c *Cycles) RenderText(w io.Writer, colored bool) error {
	output.Heading(w, colored, "%d UNREACHABLE CYCLES", len(c.Groups))
	for _, g := range c.Groups {
		fmt.Fprintln(w, g[0])
		for _, name := range g[1:] {
			fmt.Fprintln(w, " ∟", name)
		}
	}
	return nil
}

func (c *Cycles) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## Unreachable cycles (%d)\n\n", len(c.Groups))
	for _, g := range c.Groups {
		fmt.Fprintf(w, "- `%s`\n", strings.Join(g, "` ↔ `"))
	}
	fmt.Fprintln(w)
	return nil
}
