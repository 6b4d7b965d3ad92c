package prune

import (
	"fmt"
	"io"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/spf13/afero"

	"github.com/panbanda/phprune/pkg/analyzer/deadcode"
	"github.com/panbanda/phprune/pkg/models"
	"github.com/panbanda/phprune/pkg/source"
)

const fileQuestion = "%s => delete (yes/no/all/cancel/recursive) (n)? "

// FilePlanner walks the unreachable roots and asks which files to delete.
type FilePlanner struct {
	result            *deadcode.Result
	prompter          Prompter
	out               io.Writer
	includeDeprecated bool
}

// NewFilePlanner creates a planner over r. Forced decisions are echoed to out.
func NewFilePlanner(r *deadcode.Result, prompter Prompter, out io.Writer, includeDeprecated bool) *FilePlanner {
	if out == nil {
		out = io.Discard
	}
	return &FilePlanner{result: r, prompter: prompter, out: out, includeDeprecated: includeDeprecated}
}

// FilePlan is the set of units staged for deletion, in staging order.
type FilePlan struct {
	Units  []*models.Unit
	staged *roaring.Bitmap
}

// Staged reports whether the unit with the given ID is staged.
func (p *FilePlan) Staged(id int) bool {
	return p.staged.Contains(uint32(id))
}

// filePass is the state of one planning pass.
type filePass struct {
	*FilePlanner
	plan *FilePlan
	all  bool
}

// Plan asks about every root. It returns ErrCanceled when the user cancels;
// no plan survives a cancel or a prompter error.
func (fp *FilePlanner) Plan(policy Policy) (*FilePlan, error) {
	pass := &filePass{
		FilePlanner: fp,
		plan:        &FilePlan{staged: roaring.New()},
		all:         policy == PolicyForce,
	}
	for _, root := range fp.result.Roots(fp.includeDeprecated) {
		if pass.plan.Staged(root.ID) {
			continue
		}
		policy := PolicyAsk
		if pass.all {
			policy = PolicyForce
		}
		if err := pass.visit(root, 0, policy); err != nil {
			return nil, err
		}
	}
	return pass.plan, nil
}

func (p *filePass) visit(u *models.Unit, level int, policy Policy) error {
	question := fmt.Sprintf(fileQuestion, u.QualifiedName())
	if level > 0 {
		question = strings.Repeat(" ", (level-1)*2) + "∟ " + question
	}

	choice := ChoiceYes
	if policy == PolicyForce {
		fmt.Fprintln(p.out, question+"y")
	} else {
		answer, err := p.prompter.Ask(question)
		if err != nil {
			return fmt.Errorf("asking about %s: %w", u.Path, err)
		}
		choice = ParseChoice(answer)
	}

	switch choice {
	case ChoiceCancel:
		return ErrCanceled
	case ChoiceAll:
		p.all = true
		policy = PolicyForce
	case ChoiceRecursive:
		policy = PolicyForce
	case ChoiceYes:
	default:
		return nil
	}

	p.plan.staged.Add(uint32(u.ID))
	p.plan.Units = append(p.plan.Units, u)

	for _, id := range u.CalledIDs() {
		dep := p.result.Index.Unit(id)
		if p.plan.Staged(id) || !dep.IsClass() || p.result.IsUsed(dep) {
			continue
		}
		if dep.Deprecated && !p.includeDeprecated {
			continue
		}
		if !p.callersStaged(dep) {
			continue
		}
		next := policy
		if p.all {
			next = PolicyForce
		}
		if err := p.visit(dep, level+1, next); err != nil {
			return err
		}
	}
	return nil
}

// callersStaged reports whether every caller of u is already staged.
func (p *filePass) callersStaged(u *models.Unit) bool {
	return roaring.AndNot(u.Callers, p.plan.staged).IsEmpty()
}

// Apply checks every staged file against its load-time fingerprint, then
// deletes them. Nothing is deleted when a file is stale.
func (p *FilePlan) Apply(fs afero.Fs) (int, error) {
	src := source.NewFilesystem(fs)
	for _, u := range p.Units {
		if err := source.Verify(src, u.Path, u.Fingerprint); err != nil {
			return 0, err
		}
	}
	for i, u := range p.Units {
		if err := fs.Remove(u.Path); err != nil {
			return i, fmt.Errorf("removing %s: %w", u.Path, err)
		}
	}
	return len(p.Units), nil
}
