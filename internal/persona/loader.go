package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles discovery and parsing of persona files
type Loader struct {
	paths []string
}

// NewLoader creates a loader that searches the given paths. Later paths
// override personas of the same name found in earlier ones.
func NewLoader(paths []string) *Loader {
	return &Loader{paths: paths}
}

// LoadAll loads every persona from the configured paths, sorted by name.
// Files that fail to parse are skipped.
func (l *Loader) LoadAll() ([]*Persona, error) {
	byName := make(map[string]*Persona)

	for _, basePath := range l.paths {
		entries, err := os.ReadDir(basePath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}

			p, err := LoadFile(filepath.Join(basePath, entry.Name()))
			if err != nil {
				continue
			}
			byName[p.Name] = p
		}
	}

	personas := make([]*Persona, 0, len(byName))
	for _, p := range byName {
		personas = append(personas, p)
	}
	sort.Slice(personas, func(i, j int) bool { return personas[i].Name < personas[j].Name })
	return personas, nil
}

// Find returns the persona with the given name
func (l *Loader) Find(name string) (*Persona, error) {
	personas, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, p := range personas {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// LoadFile reads and parses a single persona file
func LoadFile(path string) (*Persona, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.FilePath = path
	return p, nil
}

// Parse parses a markdown document with YAML frontmatter
func Parse(content string) (*Persona, error) {
	frontmatter, body, err := parseFrontmatter(content)
	if err != nil {
		return nil, err
	}

	var p Persona
	if err := yaml.Unmarshal([]byte(frontmatter), &p); err != nil {
		return nil, fmt.Errorf("invalid frontmatter: %w", err)
	}

	p.Prompt = strings.TrimSpace(body)

	if p.Name == "" {
		return nil, ErrMissingName
	}

	return &p, nil
}

// parseFrontmatter extracts YAML frontmatter from markdown content
func parseFrontmatter(content string) (frontmatter, body string, err error) {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "---") {
		return "", "", ErrMissingFrontmatter
	}

	// Find the closing ---
	rest := content[3:]
	endIdx := strings.Index(rest, "\n---")
	if endIdx == -1 {
		return "", "", ErrMissingFrontmatter
	}

	frontmatter = strings.TrimSpace(rest[:endIdx])
	body = strings.TrimSpace(rest[endIdx+4:])

	return frontmatter, body, nil
}
