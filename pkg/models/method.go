package models

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Visibility is a method visibility keyword.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// Method is a member function owned by exactly one unit.
//
// Start and End are 0-based inclusive line indexes into the owner's line
// buffer. Start includes the associated doc comment and separator line,
// Decl is the declaration line itself.
type Method struct {
	Owner      int        `json:"owner"`
	Visibility Visibility `json:"visibility"`
	Name       string     `json:"name"`
	RawName    string     `json:"raw_name"`
	Static     bool       `json:"static"`

	Start        int `json:"start"`
	Decl         int `json:"decl"`
	End          int `json:"end"`
	CommentLines int `json:"comment_lines"`

	Deprecated bool `json:"deprecated"`
	CallsSelf  bool `json:"calls_self"`

	Callers *roaring.Bitmap `json:"-"`
}

// NewMethod creates a method owned by the given unit.
func NewMethod(owner int, visibility Visibility, rawName string) *Method {
	return &Method{
		Owner:      owner,
		Visibility: visibility,
		Name:       NormalizeMethodName(rawName),
		RawName:    rawName,
		Callers:    roaring.New(),
	}
}

// accessorPrefix marks query-scope accessors, exposed without the prefix.
const accessorPrefix = "scope"

// NormalizeMethodName strips the accessor prefix and lower-cases the next
// character: scopeActive becomes active.
func NormalizeMethodName(name string) string {
	if len(name) <= len(accessorPrefix) || !strings.HasPrefix(name, accessorPrefix) {
		return name
	}
	rest := name[len(accessorPrefix):]
	return strings.ToLower(rest[:1]) + rest[1:]
}

// Overridable reports whether subclasses and other units can see the method.
func (m *Method) Overridable() bool {
	return m.Visibility == VisibilityPublic || m.Visibility == VisibilityProtected
}

// Lines returns the number of code lines, excluding the doc comment.
func (m *Method) Lines() int {
	return m.End - m.Start + 1 - m.CommentLines
}

// CallerIDs returns caller unit IDs in ascending order.
func (m *Method) CallerIDs() []int {
	return toInts(m.Callers)
}

// Describe returns the one-line description used by reports.
func (m *Method) Describe(used bool) string {
	infos := []string{fmt.Sprintf("%d lines", m.Lines())}
	callers := int(m.Callers.GetCardinality())
	switch {
	case used:
		infos = append(infos, fmt.Sprintf("%d callers", callers))
	case callers > 0:
		infos = append(infos, fmt.Sprintf("%d unused callers", callers))
	default:
		infos = append(infos, "unused")
	}
	return fmt.Sprintf("%s function %s (%s)", m.Visibility, m.Name, strings.Join(infos, ", "))
}
