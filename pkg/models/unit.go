package models

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Kind is the flavour of a class-like declaration.
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindTrait     Kind = "trait"
)

// Unit is the symbol record extracted from one source file.
//
// A unit is class-like when it is not an entrypoint and both a namespace and
// a short name were found. Every other unit (entrypoints, files without a
// declaration, demoted duplicates) takes part in reference scanning only.
type Unit struct {
	ID         int    `json:"id"`
	Path       string `json:"path"`
	Entrypoint bool   `json:"entrypoint"`

	Namespace string `json:"namespace,omitempty"`
	ShortName string `json:"short_name,omitempty"`
	Kind      Kind   `json:"kind,omitempty"`
	Parent    string `json:"parent,omitempty"`
	DeclLine  int    `json:"decl_line"`

	RawImports []string          `json:"raw_imports,omitempty"`
	Aliases    map[string]string `json:"aliases,omitempty"`
	Methods    []*Method         `json:"methods,omitempty"`

	Deprecated    bool `json:"deprecated"`
	ReflexiveCall bool `json:"reflexive_call"`

	// Content is the file text as loaded. Lines is the editable buffer.
	Content     string   `json:"-"`
	Lines       []string `json:"-"`
	Fingerprint [32]byte `json:"-"`

	Callers *roaring.Bitmap `json:"-"`
	Called  *roaring.Bitmap `json:"-"`
}

// NewUnit creates an empty unit for the file at path.
func NewUnit(id int, path string, entrypoint bool) *Unit {
	return &Unit{
		ID:         id,
		Path:       path,
		Entrypoint: entrypoint,
		Aliases:    make(map[string]string),
		Callers:    roaring.New(),
		Called:     roaring.New(),
	}
}

// IsClass reports whether the unit is a canonical class-like symbol candidate.
func (u *Unit) IsClass() bool {
	return !u.Entrypoint && u.Namespace != "" && u.ShortName != ""
}

// QualifiedName returns namespace\short name, or "" for non-class units.
func (u *Unit) QualifiedName() string {
	if !u.IsClass() {
		return ""
	}
	return u.Namespace + `\` + u.ShortName
}

// Demote clears the namespace so the unit no longer counts as a class.
func (u *Unit) Demote() {
	u.Namespace = ""
}

// AddCaller records that caller references u, updating both sides.
func (u *Unit) AddCaller(caller *Unit) {
	u.Callers.Add(uint32(caller.ID))
	caller.Called.Add(uint32(u.ID))
}

// CallerIDs returns caller unit IDs in ascending order.
func (u *Unit) CallerIDs() []int {
	return toInts(u.Callers)
}

// CalledIDs returns called unit IDs in ascending order.
func (u *Unit) CalledIDs() []int {
	return toInts(u.Called)
}

// Method returns the first method with the given normalized name.
func (u *Unit) Method(name string) *Method {
	for _, m := range u.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Text returns the current line buffer joined with newlines.
func (u *Unit) Text() string {
	return strings.Join(u.Lines, "\n")
}

// Describe returns the one-line description used by reports. used is the
// reachability status of the unit; it is ignored for non-class units.
func (u *Unit) Describe(used bool) string {
	switch {
	case u.IsClass():
		infos := []string{fmt.Sprintf("%d functions", len(u.Methods))}
		callers := int(u.Callers.GetCardinality())
		switch {
		case used:
			infos = append(infos, fmt.Sprintf("%d callers", callers))
		case callers > 0:
			infos = append(infos, fmt.Sprintf("%d unused callers", callers))
		default:
			infos = append(infos, "unused")
		}
		if u.Parent != "" {
			infos = append(infos, fmt.Sprintf("extends '%s'", u.Parent))
		}
		return fmt.Sprintf("%s %s (%s)", u.Kind, u.QualifiedName(), strings.Join(infos, ", "))
	case u.Entrypoint:
		return "entrypoint - " + u.Path
	default:
		return "unknown - " + u.Path
	}
}

func toInts(b *roaring.Bitmap) []int {
	ids := b.ToArray()
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
