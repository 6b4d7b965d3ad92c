package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/phprune/pkg/config"
	"github.com/panbanda/phprune/pkg/source"
)

// Scanner finds source files in a directory tree.
//
// Within each directory, the contents of subdirectories come first, then the
// directory's own files. Both are taken in name order.
type Scanner struct {
	config  *config.Config
	pattern *regexp.Regexp
	dirs    map[string]bool
	root    string
	skip    map[string]bool

	// Config patterns match paths relative to the scan root, .gitignore
	// patterns paths relative to the repository root.
	patterns  gitignore.Matcher
	gitignore gitignore.Matcher
	gitRoot   string
}

// NewScanner creates a new file scanner. A nil config uses the defaults.
func NewScanner(cfg *config.Config) (*Scanner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	pattern, err := regexp.Compile(cfg.Input.FilePattern)
	if err != nil {
		return nil, fmt.Errorf("file pattern: %w", err)
	}
	dirs := make(map[string]bool, len(cfg.Exclude.Dirs))
	for _, d := range cfg.Exclude.Dirs {
		dirs[d] = true
	}
	return &Scanner{config: cfg, pattern: pattern, dirs: dirs}, nil
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns loads exclusion patterns from both config and .gitignore files.
func (s *Scanner) loadExcludePatterns(absRoot string) {
	s.patterns, s.gitignore, s.gitRoot = nil, nil, ""

	var patterns []gitignore.Pattern
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	if len(patterns) > 0 {
		s.patterns = gitignore.NewMatcher(patterns)
	}

	// ReadPatterns reads every .gitignore below the git root, each scoped to
	// its own directory.
	if !s.config.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(absRoot)
	if gitRoot == "" {
		return
	}
	gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(gitPatterns) == 0 {
		return
	}
	s.gitignore = gitignore.NewMatcher(gitPatterns)
	s.gitRoot = gitRoot
}

// isExcluded checks a path against the directory list and both pattern sets.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	if isDir && s.dirs[filepath.Base(path)] {
		return true
	}
	if s.patterns != nil {
		if rel, err := filepath.Rel(s.root, path); err == nil && s.patterns.Match(splitPath(rel), isDir) {
			return true
		}
	}
	if s.gitignore != nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			return false
		}
		rel, err := filepath.Rel(s.gitRoot, abs)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return false
		}
		return s.gitignore.Match(splitPath(rel), isDir)
	}
	return false
}

func splitPath(rel string) []string {
	return strings.Split(filepath.ToSlash(rel), "/")
}

// Discover lists the files under root, then the files of each entrypoint
// directory (relative to root). Entrypoint directories nested in root are
// left out of the root listing so every file appears once.
func (s *Scanner) Discover(root string, entrypoints []string) ([]source.File, error) {
	s.skip = make(map[string]bool, len(entrypoints))
	entryDirs := make([]string, 0, len(entrypoints))
	for _, e := range entrypoints {
		dir := filepath.Join(root, e)
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("entrypoint %s: %w", e, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("entrypoint %s is not a directory", e)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		s.skip[abs] = true
		entryDirs = append(entryDirs, dir)
	}
	defer func() { s.skip = nil }()

	paths, err := s.ScanDir(root)
	if err != nil {
		return nil, err
	}
	files := make([]source.File, 0, len(paths))
	for _, p := range paths {
		files = append(files, source.File{Path: p})
	}
	for _, dir := range entryDirs {
		paths, err := s.ScanDir(dir)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			files = append(files, source.File{Path: p, Entrypoint: true})
		}
	}
	return files, nil
}

// ScanDir recursively scans a directory for files whose base name matches
// the configured pattern. Symlinks resolving outside the root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	s.root = root
	s.loadExcludePatterns(absRoot)

	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}
	return s.walk(root, realRoot)
}

func (s *Scanner) walk(dir, absRoot string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var nested, files []string
	for _, d := range entries {
		path := filepath.Join(dir, d.Name())

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				continue
			}
			info, err := os.Stat(resolved)
			if err != nil || info.IsDir() {
				continue
			}
		}

		if d.IsDir() {
			if s.isExcluded(path, true) || s.skipped(path) {
				continue
			}
			sub, err := s.walk(path, absRoot)
			if err != nil {
				return nil, err
			}
			nested = append(nested, sub...)
			continue
		}

		if s.isExcluded(path, false) || !s.pattern.MatchString(d.Name()) {
			continue
		}
		files = append(files, path)
	}
	return append(nested, files...), nil
}

func (s *Scanner) skipped(path string) bool {
	if len(s.skip) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	return err == nil && s.skip[abs]
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return strings.HasPrefix(absPath, root+string(filepath.Separator)) || absPath == root
}
