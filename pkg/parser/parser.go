package parser

import (
	"regexp"
	"strings"

	"github.com/panbanda/phprune/pkg/models"
)

var (
	namespaceRe = regexp.MustCompile(`^namespace\s+\\?([\w\\]+)\s*;$`)
	importRe    = regexp.MustCompile(`^use\s+\\?([\w\\]+\\\w+)(?:\s+as\s+(\w+))?\s*;$`)
	classRe     = regexp.MustCompile(`^(?:(?:abstract|final|readonly)\s+)*(class|interface|trait)\s+(\w+)(?:\s+extends\s+\\?([\w\\]+))?`)
	methodRe    = regexp.MustCompile(`^(?:(?:abstract|final|static)\s+)*(public|protected|private)\s+(static\s+)?(?:(?:abstract|final)\s+)*function\s+&?\s*(\w+)`)

	// Calls on the current instance whose method name is computed at runtime.
	reflexiveRe = regexp.MustCompile(`\$this\s*->\s*(?:\$\w+|\{[^}]*\})\s*\(|static::\$\w+\s*\(|\[\s*\$this\s*,\s*\$\w+\s*\]`)
)

const (
	magicPrefix      = "__"
	deprecatedMarker = "@deprecated"
)

// Options tunes extraction.
type Options struct {
	// NamespacePrefix restricts namespaces and imports to a root such as
	// `App\`. Empty accepts any qualified name.
	NamespacePrefix string
}

func (o Options) accepts(name string) bool {
	return o.NamespacePrefix == "" || strings.HasPrefix(name, o.NamespacePrefix)
}

// Parse builds the unit for one file. Entrypoints only keep their text:
// they never produce class or method symbols.
func Parse(id int, path, content string, entrypoint bool, opts Options) *models.Unit {
	u := models.NewUnit(id, path, entrypoint)
	u.Content = content
	u.Lines = strings.Split(content, "\n")
	if entrypoint {
		return u
	}

	declared := false
	for i, raw := range u.Lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := namespaceRe.FindStringSubmatch(line); m != nil {
			if u.Namespace == "" && opts.accepts(m[1]) {
				u.Namespace = m[1]
			}
			continue
		}

		if m := importRe.FindStringSubmatch(line); m != nil {
			if opts.accepts(m[1]) {
				u.RawImports = append(u.RawImports, m[1])
				if m[2] != "" {
					u.Aliases[m[1]] = m[2]
				}
			}
			continue
		}

		if m := classRe.FindStringSubmatch(line); m != nil {
			if !declared {
				declared = true
				u.Kind = models.Kind(m[1])
				u.ShortName = m[2]
				u.Parent = lastSegment(m[3])
				u.DeclLine = i
			}
			continue
		}

		if m := methodRe.FindStringSubmatch(line); m != nil {
			if strings.HasPrefix(m[3], magicPrefix) {
				continue
			}
			method := models.NewMethod(id, models.Visibility(m[1]), m[3])
			method.Static = m[2] != "" || strings.Contains(strings.SplitN(line, "function", 2)[0], "static")
			loadMethod(u, method, i)
			u.Methods = append(u.Methods, method)
		}
	}

	if declared {
		_, _, u.Deprecated = associateComment(u.Lines, u.DeclLine)
	}
	return u
}

// loadMethod computes the span, comment and self-reference flags of a
// method declared on line decl.
func loadMethod(u *models.Unit, m *models.Method, decl int) {
	m.Decl = decl
	m.End = blockEnd(u.Lines, decl)
	m.Start, m.CommentLines, m.Deprecated = associateComment(u.Lines, decl)

	body := strings.Join(u.Lines[m.Decl:m.End+1], "\n")
	m.CallsSelf = CountFold(body, m.Name) > 1
	if reflexiveRe.MatchString(body) {
		u.ReflexiveCall = true
	}
}

// blockEnd returns the last line of the declaration starting at decl. A
// declaration terminated by ';' ends on its own line; otherwise the block
// ends where the brace balance returns to zero after opening.
func blockEnd(lines []string, decl int) int {
	if strings.HasSuffix(strings.TrimSpace(lines[decl]), ";") {
		return decl
	}
	depth := 0
	opened := false
	for i := decl; i < len(lines); i++ {
		open := strings.Count(lines[i], "{")
		depth += open - strings.Count(lines[i], "}")
		opened = opened || open > 0
		if opened && depth == 0 {
			return i
		}
	}
	return len(lines) - 1
}

// associateComment walks backward from a declaration line and attaches the
// block comment closing right above it, plus one blank separator line.
func associateComment(lines []string, decl int) (start, comment int, deprecated bool) {
	start = decl

	prev := decl - 1
	for prev >= 0 && strings.TrimSpace(lines[prev]) == "" {
		prev--
	}
	if prev >= 0 && strings.HasSuffix(strings.TrimSpace(lines[prev]), "*/") {
		open := -1
		for i := prev; i >= 0; i-- {
			if strings.HasPrefix(strings.TrimSpace(lines[i]), "/*") {
				open = i
				break
			}
		}
		if open >= 0 {
			for i := open; i <= prev; i++ {
				if CountFold(lines[i], deprecatedMarker) > 0 {
					deprecated = true
				}
			}
			comment = decl - open
			start = open
		}
	}

	if start > 0 && strings.TrimSpace(lines[start-1]) == "" {
		start--
		comment++
	}
	return start, comment, deprecated
}

// CountFold counts non-overlapping, case-insensitive occurrences of substr.
func CountFold(s, substr string) int {
	if substr == "" {
		return 0
	}
	return strings.Count(strings.ToLower(s), strings.ToLower(substr))
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, `\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
