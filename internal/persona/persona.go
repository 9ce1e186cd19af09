// Package persona loads system prompts written as markdown with YAML
// frontmatter. A persona can also pick the tools and sampling temperature
// it works best with.
package persona

import "errors"

var (
	// ErrMissingFrontmatter indicates the persona file lacks YAML frontmatter
	ErrMissingFrontmatter = errors.New("persona file must start with YAML frontmatter (---)")

	// ErrMissingName indicates the persona definition has no name field
	ErrMissingName = errors.New("persona must have a name field")

	// ErrNotFound indicates the requested persona doesn't exist
	ErrNotFound = errors.New("persona not found")
)

// Persona is a named system prompt with optional generation settings
type Persona struct {
	// Name is the unique identifier used with --persona
	Name string `yaml:"name"`

	// Description is shown in the personas listing
	Description string `yaml:"description"`

	// Temperature overrides the configured temperature when set
	Temperature *float64 `yaml:"temperature"`

	// MaxIterations overrides the configured loop bound when set
	MaxIterations *int `yaml:"max_iterations"`

	// Tools are enabled when no tool is chosen on the command line
	Tools []string `yaml:"tools"`

	// Prompt is the markdown body, used as the system prompt
	Prompt string `yaml:"-"`

	// FilePath is the source file (populated by loader)
	FilePath string `yaml:"-"`
}
