// Package ignore keeps the file tools away from secrets and version control
// metadata. Patterns use a subset of .gitignore syntax and are read from
// .lfmignore files in a directory and its parents.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the per-directory pattern file
const FileName = ".lfmignore"

// ErrIgnored is returned by Check for blocked paths
var ErrIgnored = errors.New("path is blocked by " + FileName)

var defaultPatterns = []string{
	".git/",
	".svn/",
	".hg/",
	"node_modules/",
	"__pycache__/",
	".env",
	".env.*",
	"*.pem",
	"*.key",
	"*_rsa",
	"*_dsa",
	"*_ecdsa",
	"*_ed25519",
	"*.p12",
	"*.pfx",
	"credentials.json",
	"service-account*.json",
}

type pattern struct {
	base     string // absolute directory of the declaring file, empty for Add
	glob     string
	negation bool // !pattern re-allows a path
	dirOnly  bool // pattern/ matches directories only
	anchored bool // /pattern matches from the root only
}

// Matcher decides whether a path is off limits. Later patterns win.
type Matcher struct {
	patterns []pattern
}

// Defaults returns a matcher with the built-in patterns only
func Defaults() *Matcher {
	m := &Matcher{}
	for _, p := range defaultPatterns {
		m.Add(p)
	}
	return m
}

// Load returns the built-in patterns followed by the .lfmignore files from
// the filesystem root down to dir, so closer files override outer ones.
// Patterns from a file apply only below its directory, and anchored or
// slashed patterns are relative to it.
func Load(dir string) (*Matcher, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	m := Defaults()

	var files []string
	for d := dir; ; {
		files = append(files, filepath.Join(d, FileName))
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}

	for i := len(files) - 1; i >= 0; i-- {
		if err := m.loadFile(files[i]); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", files[i], err)
		}
	}
	return m, nil
}

func (m *Matcher) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	base := filepath.Dir(path)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.add(base, line)
	}
	return scanner.Err()
}

// Add appends one pattern line. Anchored patterns added this way are
// relative to the path given to Match.
func (m *Matcher) Add(line string) {
	m.add("", line)
}

func (m *Matcher) add(base, line string) {
	p := pattern{base: base}
	if strings.HasPrefix(line, "!") {
		p.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	}
	// a slash inside a file pattern anchors it to the file's directory
	if base != "" && strings.Contains(line, "/") {
		p.anchored = true
	}
	p.glob = line
	m.patterns = append(m.patterns, p)
}

// Match reports whether path is blocked. isDir tells whether path itself
// is a directory; every parent component is one.
func (m *Matcher) Match(path string, isDir bool) bool {
	parts := split(path)
	if len(parts) == 0 {
		return false
	}

	abs, absErr := filepath.Abs(path)

	ignored := false
	for _, p := range m.patterns {
		target := parts
		if p.base != "" {
			if absErr != nil {
				continue
			}
			rel, ok := within(p.base, abs)
			if !ok {
				continue
			}
			target = rel
		}
		if p.matches(target, isDir) {
			ignored = !p.negation
		}
	}
	return ignored
}

// within returns the components of abs below base
func within(base, abs string) ([]string, bool) {
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, false
	}
	parts := split(rel)
	return parts, len(parts) > 0
}

// Check stats path and returns an error wrapping ErrIgnored if it is blocked
func (m *Matcher) Check(path string) error {
	info, err := os.Stat(path)
	isDir := err == nil && info.IsDir()
	if m.Match(path, isDir) {
		return fmt.Errorf("%w: %s", ErrIgnored, path)
	}
	return nil
}

func split(path string) []string {
	path = filepath.ToSlash(filepath.Clean(path))
	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

func (p pattern) matches(parts []string, isDir bool) bool {
	last := len(parts) - 1

	// patterns with a slash match whole path suffixes
	if p.anchored || strings.Contains(p.glob, "/") {
		for i := 0; i <= last; i++ {
			for j := i; j <= last; j++ {
				if j == last && p.dirOnly && !isDir {
					continue
				}
				if glob(p.glob, strings.Join(parts[i:j+1], "/")) {
					return true
				}
			}
			if p.anchored {
				break
			}
		}
		return false
	}

	for i, part := range parts {
		if i == last && p.dirOnly && !isDir {
			continue
		}
		if glob(p.glob, part) {
			return true
		}
	}
	return false
}

// glob matches name against a filepath.Match pattern where ** spans directories
func glob(pattern, name string) bool {
	before, after, ok := strings.Cut(pattern, "**")
	if !ok {
		matched, _ := filepath.Match(pattern, name)
		return matched
	}

	before = strings.TrimSuffix(before, "/")
	after = strings.TrimPrefix(after, "/")
	if before != "" && name != before && !strings.HasPrefix(name, before+"/") {
		return false
	}
	if after == "" {
		return true
	}

	parts := strings.Split(name, "/")
	for i := range parts {
		if matched, _ := filepath.Match(after, strings.Join(parts[i:], "/")); matched {
			return true
		}
	}
	return false
}
