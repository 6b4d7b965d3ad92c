package report

import (
	"fmt"
	"io"

	"github.com/panbanda/phprune/internal/output"
	"github.com/panbanda/phprune/pkg/analyzer/deadcode"
)

// MethodFinding is one unused method.
type MethodFinding struct {
	Name        string `json:"name"`
	Visibility  string `json:"visibility"`
	Start       int    `json:"start_line"`
	End         int    `json:"end_line"`
	Lines       int    `json:"lines"`
	Deprecated  bool   `json:"deprecated,omitempty"`
	Description string `json:"-"`
}

// ClassMethods groups the unused methods of one used unit.
type ClassMethods struct {
	Class       string          `json:"class"`
	Path        string          `json:"path"`
	Description string          `json:"-"`
	Methods     []MethodFinding `json:"methods"`
}

// UnusedMethods lists unused methods per used unit.
type UnusedMethods struct {
	Classes []ClassMethods `json:"classes"`
	Count   int            `json:"count"`
	Lines   int            `json:"lines"`
}

// NewUnusedMethods collects the unused methods of r in unit order.
func NewUnusedMethods(r *deadcode.Result, includeDeprecated bool) *UnusedMethods {
	um := &UnusedMethods{}
	for _, u := range r.Used {
		var findings []MethodFinding
		for _, m := range r.UnusedMethodsOf(u) {
			if m.Deprecated && !includeDeprecated {
				continue
			}
			findings = append(findings, MethodFinding{
				Name:        m.Name,
				Visibility:  string(m.Visibility),
				Start:       m.Start + 1,
				End:         m.End + 1,
				Lines:       m.Lines(),
				Deprecated:  m.Deprecated,
				Description: m.Describe(false),
			})
			um.Count++
			um.Lines += m.Lines()
		}
		if len(findings) == 0 {
			continue
		}
		um.Classes = append(um.Classes, ClassMethods{
			Class:       u.QualifiedName(),
			Path:        u.Path,
			Description: u.Describe(true),
			Methods:     findings,
		})
	}
	return um
}

func (um *UnusedMethods) RenderData() any { return um }

func (um *UnusedMethods) RenderText(w io.Writer, colored bool) error {
	output.Heading(w, colored, "%d UNUSED FUNCTIONS (%d lines)", um.Count, um.Lines)
	for _, c := range um.Classes {
		fmt.Fprintln(w, c.Description)
		for _, m := range c.Methods {
			fmt.Fprintln(w, " ∟", m.Description)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (um *UnusedMethods) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## Unused functions (%d, %d lines)\n\n", um.Count, um.Lines)
	for _, c := range um.Classes {
		fmt.Fprintf(w, "### `%s`\n\n", c.Class)
		for _, m := range c.Methods {
			fmt.Fprintf(w, "- %s `%s` (lines %d-%d, %d lines)\n", m.Visibility, m.Name, m.Start, m.End, m.Lines)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// Table summarizes unused functions per unit.
func (um *UnusedMethods) Table() *output.Table {
	rows := make([][]string, 0, len(um.Classes))
	for _, c := range um.Classes {
		lines := 0
		for _, m := range c.Methods {
			lines += m.Lines
		}
		rows = append(rows, []string{c.Class, fmt.Sprint(len(c.Methods)), fmt.Sprint(lines)})
	}
	footer := []string{"Total", fmt.Sprint(um.Count), fmt.Sprint(um.Lines)}
	return output.NewTable("Unused functions by class", []string{"Class", "Functions", "Lines"}, rows, footer, rows)
}
