package report

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/panbanda/phprune/internal/output"
	"github.com/panbanda/phprune/pkg/analyzer/deadcode"
	"github.com/panbanda/phprune/pkg/models"
)

// callerDetailLimit is the caller count below which a method's callers are listed.
const callerDetailLimit = 5

// Caller is one unit referencing a scanned class or method.
type Caller struct {
	Name        string `json:"name"`
	Used        bool   `json:"used"`
	Description string `json:"-"`
}

// MethodDetail is one method of a scanned class with its listed callers.
type MethodDetail struct {
	Name        string   `json:"name"`
	Used        bool     `json:"used"`
	Callers     []Caller `json:"callers,omitempty"`
	Description string   `json:"-"`
}

// ClassDetail is the caller breakdown of one scanned class.
type ClassDetail struct {
	Class        string         `json:"class"`
	Used         bool           `json:"used"`
	Methods      []MethodDetail `json:"methods"`
	OtherCallers []Caller       `json:"other_callers,omitempty"`
	Description  string         `json:"-"`
}

// Specific holds caller detail for the classes named in to_scan.
type Specific struct {
	Classes []ClassDetail `json:"classes"`
	Unknown []string      `json:"unknown,omitempty"`
}

// NewSpecific builds caller detail for names. Names that are not a known
// class are kept in Unknown.
func NewSpecific(r *deadcode.Result, names []string) *Specific {
	s := &Specific{Classes: []ClassDetail{}}
	for _, name := range names {
		u, ok := r.Index.Lookup(name)
		if !ok {
			slog.Warn("class to scan not found", slog.String("name", name))
			s.Unknown = append(s.Unknown, name)
			continue
		}
		s.Classes = append(s.Classes, classDetail(r, u))
	}
	return s
}

func classDetail(r *deadcode.Result, u *models.Unit) ClassDetail {
	d := ClassDetail{
		Class:       u.QualifiedName(),
		Used:        r.IsUsed(u),
		Description: u.Describe(r.IsUsed(u)),
	}
	listed := make(map[int]bool)
	for _, m := range u.Methods {
		used := r.Methods.IsUsed(m)
		md := MethodDetail{Name: m.Name, Used: used, Description: m.Describe(used)}
		ids := m.CallerIDs()
		if len(ids) < callerDetailLimit {
			for _, id := range ids {
				listed[id] = true
				if id == u.ID {
					continue
				}
				md.Callers = append(md.Callers, newCaller(r, r.Index.Unit(id)))
			}
		}
		d.Methods = append(d.Methods, md)
	}
	for _, id := range u.CallerIDs() {
		if !listed[id] {
			d.OtherCallers = append(d.OtherCallers, newCaller(r, r.Index.Unit(id)))
		}
	}
	return d
}

func newCaller(r *deadcode.Result, u *models.Unit) Caller {
	used := r.IsUsed(u)
	name := u.QualifiedName()
	if name == "" {
		name = u.Path
	}
	return Caller{Name: name, Used: used, Description: u.Describe(used)}
}

func arrow(used bool) string {
	if used {
		return "←"
	}
	return "↤"
}

func (s *Specific) RenderData() any { return s }

func (s *Specific) RenderText(w io.Writer, colored bool) error {
	output.Heading(w, colored, "SPECIFIC CLASSES")
	for _, name := range s.Unknown {
		fmt.Fprintf(w, "%s: not found\n", name)
	}
	for _, c := range s.Classes {
		fmt.Fprintln(w, c.Description)
		for _, m := range c.Methods {
			fmt.Fprintln(w, " ∟", m.Description)
			for _, caller := range m.Callers {
				fmt.Fprintf(w, "    %s %s\n", arrow(caller.Used), caller.Description)
			}
		}
		if len(c.OtherCallers) > 0 {
			fmt.Fprintln(w, "other callers:")
			for _, caller := range c.OtherCallers {
				fmt.Fprintf(w, " %s %s\n", arrow(caller.Used), caller.Description)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (s *Specific) RenderMarkdown(w io.Writer) error {
	fmt.Fprint(w, "## Specific classes\n\n")
	for _, name := range s.Unknown {
		fmt.Fprintf(w, "- `%s` not found\n", name)
	}
	for _, c := range s.Classes {
		fmt.Fprintf(w, "### `%s`\n\n", c.Class)
		for _, m := range c.Methods {
			fmt.Fprintf(w, "- `%s`\n", m.Description)
			for _, caller := range m.Callers {
				fmt.Fprintf(w, "  - %s `%s`\n", arrow(caller.Used), caller.Name)
			}
		}
		if len(c.OtherCallers) > 0 {
			fmt.Fprint(w, "\nOther callers:\n\n")
			for _, caller := range c.OtherCallers {
				fmt.Fprintf(w, "- %s `%s`\n", arrow(caller.Used), caller.Name)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
