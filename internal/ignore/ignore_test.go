package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	m := Defaults()

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{path: ".env", want: true},
		{path: "app/.env.production", want: true},
		{path: "/home/me/.ssh/id_rsa", want: true},
		{path: "certs/server.pem", want: true},
		{path: ".git", isDir: true, want: true},
		{path: ".git/config", want: true},
		{path: "web/node_modules/react/index.js", want: true},
		{path: "main.go", want: false},
		{path: "docs", isDir: true, want: false},
		{path: "notes/environment.md", want: false},
		{path: ".", isDir: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.path, tt.isDir))
		})
	}
}

func TestMatcher_Patterns(t *testing.T) {
	m := &Matcher{}
	m.Add("build/")
	m.Add("/secret.txt")
	m.Add("logs/*.log")
	m.Add("data/**/*.csv")
	m.Add("*.tmp")
	m.Add("!keep.tmp")

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{path: "build", isDir: true, want: true},
		{path: "build", want: false},
		{path: "build/out.bin", want: true},
		{path: "secret.txt", want: true},
		{path: "sub/secret.txt", want: false},
		{path: "logs/app.log", want: true},
		{path: "svc/logs/app.log", want: true},
		{path: "logs/app.txt", want: false},
		{path: "data/2024/01/sales.csv", want: true},
		{path: "data/readme.md", want: false},
		{path: "scratch.tmp", want: true},
		{path: "keep.tmp", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.path, tt.isDir))
		})
	}
}

func TestLoad_CloserFilesWin(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(sub, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("# outer\n*.csv\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, FileName), []byte("!public.csv\n!.env.example\n"), 0644))

	m, err := Load(sub)
	require.NoError(t, err)

	assert.True(t, m.Match(filepath.Join(sub, "private.csv"), false))
	assert.False(t, m.Match(filepath.Join(sub, "public.csv"), false))
	assert.True(t, m.Match(filepath.Join(root, "public.csv"), false))
	assert.False(t, m.Match(filepath.Join(sub, ".env.example"), false))
	assert.True(t, m.Match(filepath.Join(sub, ".env"), false))
	assert.False(t, m.Match(filepath.Join(t.TempDir(), "elsewhere.csv"), false))
}

func TestLoad_AnchoredToDeclaringFile(t *testing.T) {
	root := t.TempDir()
	secret := filepath.Join(root, "secrets", "x")
	nested := filepath.Join(root, "app", "secrets", "x")
	require.NoError(t, os.MkdirAll(filepath.Dir(secret), 0755))
	require.NoError(t, os.MkdirAll(filepath.Dir(nested), 0755))
	require.NoError(t, os.WriteFile(secret, []byte("s"), 0600))
	require.NoError(t, os.WriteFile(nested, []byte("n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("/secrets/\napp/*.log\n"), 0644))

	m, err := Load(filepath.Join(root, "app"))
	require.NoError(t, err)

	assert.ErrorIs(t, m.Check(secret), ErrIgnored)
	assert.NoError(t, m.Check(nested))
	assert.True(t, m.Match(filepath.Join(root, "app", "run.log"), false))
	assert.False(t, m.Match(filepath.Join(root, "app", "sub", "run.log"), false))
	assert.False(t, m.Match(filepath.Join(root, "svc", "app", "run.log"), false))

	t.Chdir(root)
	assert.ErrorIs(t, m.Check("secrets/x"), ErrIgnored)
	assert.ErrorIs(t, m.Check("./app/../secrets/x"), ErrIgnored)
	assert.NoError(t, m.Check("app/secrets/x"))

	t.Chdir(filepath.Join(root, "app"))
	assert.ErrorIs(t, m.Check("../secrets/x"), ErrIgnored)
	assert.NoError(t, m.Check("secrets/x"))
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	key := filepath.Join(dir, "server.key")
	plain := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(key, []byte("k"), 0600))
	require.NoError(t, os.WriteFile(plain, []byte("n"), 0644))

	m := Defaults()
	assert.ErrorIs(t, m.Check(key), ErrIgnored)
	assert.NoError(t, m.Check(plain))
	assert.NoError(t, m.Check(filepath.Join(dir, "missing.txt")))
}
