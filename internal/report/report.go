// Package report turns an analysis result into renderable report sections.
package report

import (
	"fmt"
	"io"

	"github.com/panbanda/phprune/internal/output"
	"github.com/panbanda/phprune/pkg/analyzer/deadcode"
)

// Options selects the sections of a report.
type Options struct {
	Ignored           []string
	PrintInvalid      bool
	PrintFunctions    bool
	PrintCycles       bool
	PrintSpecific     bool
	ToScan            []string
	IncludeDeprecated bool
}

// Build assembles the report for one analysis run.
func Build(r *deadcode.Result, opts Options) *output.Report {
	rep := &output.Report{Title: "phprune"}
	rep.Add("summary", NewSummary(r))
	if len(r.Duplicates) > 0 {
		rep.Add("duplicates", &Duplicates{Groups: r.Duplicates})
	}
	if opts.PrintInvalid {
		rep.Add("ignored", &Ignored{Names: opts.Ignored})
		rep.Add("invalid_branches", NewBranches(r, opts.IncludeDeprecated))
	}
	if opts.PrintFunctions {
		methods := NewUnusedMethods(r, opts.IncludeDeprecated)
		rep.Add("unused_functions", methods)
		if len(methods.Classes) > 0 {
			rep.Add("unused_functions_summary", methods.Table())
		}
	}
	if opts.PrintCycles {
		rep.Add("cycles", NewCycles(r))
	}
	if opts.PrintSpecific {
		rep.Add("specific", NewSpecific(r, opts.ToScan))
	}
	return rep
}

// Summary holds the headline counts of a run.
type Summary struct {
	Units             int `json:"units"`
	Classes           int `json:"classes"`
	Edges             int `json:"edges"`
	Used              int `json:"used"`
	Unused            int `json:"unused"`
	InvalidRoots      int `json:"invalid_roots"`
	UnusedMethods     int `json:"unused_methods"`
	UnusedMethodLines int `json:"unused_method_lines"`
}

// NewSummary counts the findings of r.
func NewSummary(r *deadcode.Result) *Summary {
	return &Summary{
		Units:             r.Index.Len(),
		Classes:           len(r.Used) + len(r.Unused),
		Edges:             r.Edges,
		Used:              len(r.Used),
		Unused:            len(r.Unused),
		InvalidRoots:      len(r.InvalidRoots),
		UnusedMethods:     len(r.UnusedMethods),
		UnusedMethodLines: r.UnusedMethodLines,
	}
}

func (s *Summary) RenderData() any { return s }

func (s *Summary) RenderText(w io.Writer, colored bool) error {
	_, err := fmt.Fprintf(w, "%d files, %d classes (%d used, %d unused), %d references, %d invalid roots, %d unused functions (%d lines)\n",
		s.Units, s.Classes, s.Used, s.Unused, s.Edges, s.InvalidRoots, s.UnusedMethods, s.UnusedMethodLines)
	return err
}

func (s *Summary) RenderMarkdown(w io.Writer) error {
	t := output.NewTable("Summary", []string{"Metric", "Value"}, [][]string{
		{"Files", fmt.Sprint(s.Units)},
		{"Classes", fmt.Sprint(s.Classes)},
		{"Used", fmt.Sprint(s.Used)},
		{"Unused", fmt.Sprint(s.Unused)},
		{"References", fmt.Sprint(s.Edges)},
		{"Invalid roots", fmt.Sprint(s.InvalidRoots)},
		{"Unused functions", fmt.Sprint(s.UnusedMethods)},
		{"Unused function lines", fmt.Sprint(s.UnusedMethodLines)},
	}, nil, nil)
	return t.RenderMarkdown(w)
}

// Ignored echoes the always-used list.
type Ignored struct {
	Names []string `json:"names"`
}

func (i *Ignored) RenderData() any { return i.Names }

func (i *Ignored) RenderText(w io.Writer, colored bool) error {
	output.Heading(w, colored, "%d IGNORED", len(i.Names))
	for _, name := range i.Names {
		fmt.Fprintln(w, name)
	}
	return nil
}

func (i *Ignored) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## Ignored (%d)\n\n", len(i.Names))
	for _, name := range i.Names {
		fmt.Fprintf(w, "- `%s`\n", name)
	}
	fmt.Fprintln(w)
	return nil
}

// Duplicates lists qualified names declared by more than one file.
type Duplicates struct {
	Groups []deadcode.Duplicate `json:"groups"`
}

func (d *Duplicates) RenderData() any { return d.Groups }

func (d *Duplicates) RenderText(w io.Writer, colored bool) error {
	output.Heading(w, colored, "%d DUPLICATES", len(d.Groups))
	for _, g := range d.Groups {
		fmt.Fprintf(w, "%s (kept %s)\n", g.QualifiedName, g.Canonical)
		for _, path := range g.Demoted {
			fmt.Fprintln(w, " ∟", path)
		}
	}
	return nil
}

func (d *Duplicates) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## Duplicates (%d)\n\n", len(d.Groups))
	for _, g := range d.Groups {
		fmt.Fprintf(w, "- `%s` kept `%s`\n", g.QualifiedName, g.Canonical)
		for _, path := range g.Demoted {
			fmt.Fprintf(w, "  - `%s`\n", path)
		}
	}
	fmt.Fprintln(w)
	return nil
}
