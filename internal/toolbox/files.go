package toolbox

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/simonyos/lfm/internal/ignore"
)

// guard is the .lfmignore matcher of the working directory
var guard = sync.OnceValues(func() (*ignore.Matcher, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return ignore.Defaults(), nil
	}
	return ignore.Load(cwd)
})

// MaxReadBytes caps max_bytes for read_file
const MaxReadBytes = 1 << 20

// ReadFileArgs are the arguments of read_file
type ReadFileArgs struct {
	Path     string `json:"path" description:"The path to the file to read"`
	MaxBytes int    `json:"max_bytes" default:"4096" description:"Maximum number of bytes to return"`
}

// ReadFile returns up to MaxBytes of a file. MaxBytes above MaxReadBytes
// is lowered to it.
func ReadFile(_ context.Context, args ReadFileArgs) (string, error) {
	if args.MaxBytes <= 0 {
		return "", fmt.Errorf("max_bytes must be positive")
	}
	limit := min(args.MaxBytes, MaxReadBytes)

	m, err := guard()
	if err != nil {
		return "", err
	}
	if err := m.Check(args.Path); err != nil {
		return "", err
	}

	f, err := os.Open(args.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(limit)+1))
	if err != nil {
		return "", err
	}
	if len(data) > limit {
		return string(data[:limit]) + fmt.Sprintf("\n... (truncated at %d bytes)", limit), nil
	}
	return string(data), nil
}

// ListDirArgs are the arguments of list_dir
type ListDirArgs struct {
	Path string `json:"path" default:"." description:"The directory path to list (defaults to current directory)"`
}

// ListDir lists the directory contents, directories suffixed with a slash.
// Entries blocked by .lfmignore are left out.
func ListDir(_ context.Context, args ListDirArgs) (string, error) {
	path := args.Path
	if path == "" {
		path = "."
	}

	m, err := guard()
	if err != nil {
		return "", err
	}
	if err := m.Check(path); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if m.Match(filepath.Join(path, name), e.IsDir()) {
			continue
		}
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		return "(empty directory)", nil
	}
	return strings.Join(names, "\n"), nil
}
