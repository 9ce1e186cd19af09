// Package toolbox holds the functions the agent can be given as tools. They
// are plain functions: nothing here knows about the agent loop.
package toolbox

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/simonyos/lfm/internal/tools"
)

// Entry is a tool that can be enabled on a registry
type Entry struct {
	Name     string
	Doc      string
	register func(*tools.Registry) error
}

func entry[T, R any](name, doc string, fn func(context.Context, T) (R, error)) Entry {
	return Entry{
		Name: name,
		Doc:  doc,
		register: func(r *tools.Registry) error {
			_, err := tools.Register(r, name, doc, fn)
			return err
		},
	}
}

// Available returns every known tool in catalog order
func Available() []Entry {
	return []Entry{
		entry("get_current_time", "Get the current local time.", GetCurrentTime),
		entry("get_weather", "Get the current weather for a specific city.", GetWeather),
		entry("calculate_bmi", "Calculate Body Mass Index given weight in kg and height in meters.", CalculateBMI),
		entry("read_file", "Read the contents of a file at the specified path.", ReadFile),
		entry("list_dir", "List files and directories at the specified path.", ListDir),
	}
}

// Names returns the names of every known tool
func Names() []string {
	entries := Available()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

// Enable registers the named tools on reg in the order given. Unknown names
// are rejected before anything is registered.
func Enable(reg *tools.Registry, names ...string) error {
	available := Available()
	selected := make([]Entry, 0, len(names))

	var unknown []string
	for _, name := range names {
		i := slices.IndexFunc(available, func(e Entry) bool { return e.Name == name })
		if i < 0 {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, available[i])
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown tool(s): %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(Names(), ", "))
	}

	for _, e := range selected {
		if err := e.register(reg); err != nil {
			return fmt.Errorf("failed to register %s: %w", e.Name, err)
		}
	}
	return nil
}

// EnableAll registers every known tool on reg
func EnableAll(reg *tools.Registry) error {
	return Enable(reg, Names()...)
}
