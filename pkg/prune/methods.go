package prune

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/afero"

	"github.com/panbanda/phprune/pkg/analyzer/deadcode"
	"github.com/panbanda/phprune/pkg/models"
	"github.com/panbanda/phprune/pkg/source"
)

const methodQuestion = " ∟ %s function %s (%d lines) => delete (yes/no/all/file/cancel) (n)? "

// MethodPlanner asks which unused methods of used units to delete.
type MethodPlanner struct {
	result            *deadcode.Result
	prompter          Prompter
	out               io.Writer
	includeDeprecated bool
}

// NewMethodPlanner creates a planner over r. Unit headers and forced
// decisions are written to out.
func NewMethodPlanner(r *deadcode.Result, prompter Prompter, out io.Writer, includeDeprecated bool) *MethodPlanner {
	if out == nil {
		out = io.Discard
	}
	return &MethodPlanner{result: r, prompter: prompter, out: out, includeDeprecated: includeDeprecated}
}

// FileEdit is the set of methods staged for deletion in one unit, sorted by
// descending start line.
type FileEdit struct {
	Unit    *models.Unit
	Methods []*models.Method
}

// Lines returns the unit's line buffer with every staged span removed.
func (e *FileEdit) Lines() []string {
	lines := slices.Clone(e.Unit.Lines)
	for _, span := range e.spans() {
		lines = slices.Delete(lines, span[0], span[1]+1)
	}
	return lines
}

// spans returns the staged line ranges, descending. A range never reaches
// past the line before the next declared method: a bodyless declaration
// spread over several lines gets its brace count from the method below it.
func (e *FileEdit) spans() [][2]int {
	out := make([][2]int, 0, len(e.Methods))
	for _, m := range e.Methods {
		end := min(m.End, e.nextStart(m.Start)-1, len(e.Unit.Lines)-1)
		if end < m.Start {
			continue
		}
		out = append(out, [2]int{m.Start, end})
	}
	return out
}

func (e *FileEdit) nextStart(start int) int {
	next := len(e.Unit.Lines)
	for _, m := range e.Unit.Methods {
		if m.Start > start && m.Start < next {
			next = m.Start
		}
	}
	return next
}

// MethodPlan holds the staged edits, one per touched unit.
type MethodPlan struct {
	Edits []FileEdit
}

// Count returns the number of staged methods.
func (p *MethodPlan) Count() int {
	n := 0
	for _, e := range p.Edits {
		n += len(e.Methods)
	}
	return n
}

// Plan asks about every unused method, file by file. A cancel drops only
// the current file's staged methods. A prompter error drops the plan.
func (mp *MethodPlanner) Plan(policy Policy) (*MethodPlan, error) {
	plan := &MethodPlan{}
	all := policy == PolicyForce
	for _, u := range mp.result.Used {
		candidates := mp.candidates(u)
		if len(candidates) == 0 {
			continue
		}
		fmt.Fprintln(mp.out, u.Describe(true))

		edit := FileEdit{Unit: u}
		wholeFile := false
	methods:
		for _, m := range candidates {
			question := fmt.Sprintf(methodQuestion, m.Visibility, m.Name, m.Lines())
			choice := ChoiceYes
			if all || wholeFile {
				fmt.Fprintln(mp.out, question+"y")
			} else {
				answer, err := mp.prompter.Ask(question)
				if err != nil {
					return nil, fmt.Errorf("asking about %s in %s: %w", m.Name, u.Path, err)
				}
				choice = ParseChoice(answer)
			}

			switch choice {
			case ChoiceYes:
			case ChoiceAll:
				all = true
			case ChoiceFile:
				wholeFile = true
			case ChoiceCancel:
				edit.Methods = nil
				break methods
			default:
				continue
			}
			edit.Methods = append(edit.Methods, m)
		}
		if len(edit.Methods) > 0 {
			plan.Edits = append(plan.Edits, edit)
		}
	}
	return plan, nil
}

func (mp *MethodPlanner) candidates(u *models.Unit) []*models.Method {
	var out []*models.Method
	for _, m := range mp.result.UnusedMethodsOf(u) {
		if m.Deprecated && !mp.includeDeprecated {
			continue
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b *models.Method) int { return b.Start - a.Start })
	return out
}

// Apply rewrites each touched file once, after checking it against its
// load-time fingerprint. The units' line buffers are updated to match.
func (p *MethodPlan) Apply(fs afero.Fs) (int, error) {
	src := source.NewFilesystem(fs)
	for _, e := range p.Edits {
		if err := source.Verify(src, e.Unit.Path, e.Unit.Fingerprint); err != nil {
			return 0, err
		}
	}
	for i, e := range p.Edits {
		info, err := fs.Stat(e.Unit.Path)
		if err != nil {
			return i, fmt.Errorf("rewriting %s: %w", e.Unit.Path, err)
		}
		old := e.Unit.Lines
		e.Unit.Lines = e.Lines()
		content := []byte(e.Unit.Text())
		if err := afero.WriteFile(fs, e.Unit.Path, content, info.Mode().Perm()); err != nil {
			e.Unit.Lines = old
			return i, fmt.Errorf("rewriting %s: %w", e.Unit.Path, err)
		}
		e.Unit.Content = string(content)
		e.Unit.Fingerprint = source.Fingerprint(content)
	}
	return len(p.Edits), nil
}
