package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m4xw311/picode/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
	run  func(args string) (string, error)
}

func (s *stubTool) Name() string               { return s.name }
func (s *stubTool) Description() string        { return "stub " + s.name }
func (s *stubTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (s *stubTool) Execute(_ context.Context, args string) (string, error) {
	return s.run(args)
}

func TestRegistryExecute(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{name: "echo", run: func(a string) (string, error) { return "got " + a, nil }})
	r.Register(&stubTool{name: "fail", run: func(string) (string, error) { return "", os.ErrPermission }})
	r.Register(&stubTool{name: "boom", run: func(string) (string, error) { panic("kaboom") }})

	tests := []struct {
		name, tool, want string
	}{
		{"ok", "echo", `got {"x":1}`},
		{"unknown", "nope", "Error: unknown tool 'nope'"},
		{"error", "fail", "Error executing fail: permission denied"},
		{"panic", "boom", "Error executing boom: kaboom"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Execute(context.Background(), tc.tool, `{"x":1}`))
		})
	}
}

func TestRegistryOrderAndSelect(t *testing.T) {
	r := NewRegistry(nil)
	for _, n := range []string{"b", "a", "github__issues", "github__prs"} {
		r.Register(&stubTool{name: n})
	}
	var names []string
	for _, tool := range r.Tools() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"b", "a", "github__issues", "github__prs"}, names)

	all, err := r.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Len())

	sel, err := r.Select(&config.Toolset{Name: "gh", Tools: []string{"github__*", "a"}})
	require.NoError(t, err)
	assert.Equal(t, 3, sel.Len())
	_, ok := sel.Get("b")
	assert.False(t, ok)

	_, err = r.Select(&config.Toolset{Name: "bad", Tools: []string{"missing"}})
	assert.Error(t, err)
}

func TestDefaultRegistrySchemas(t *testing.T) {
	r := NewDefaultRegistry(&config.Config{}, nil)
	for _, name := range []string{"list_files", "read_file", "write_file", "run_command"} {
		tool, ok := r.Get(name)
		require.True(t, ok, name)
		schema := tool.Parameters()
		assert.Equal(t, "object", schema["type"], name)
		assert.NotContains(t, schema, "$schema")
		props, ok := schema["properties"].(map[string]any)
		require.True(t, ok, name)
		assert.NotEmpty(t, props)
	}
	cmd, _ := r.Get("run_command")
	props := cmd.Parameters()["properties"].(map[string]any)
	assert.Contains(t, props, "command")
	assert.Equal(t, []any{"command"}, cmd.Parameters()["required"])
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))

	tool := &ListFilesTool{fsAccess: &config.FilesystemAccess{}}
	out, err := tool.Execute(context.Background(), `{"path":"`+dir+`"}`)
	require.NoError(t, err)
	assert.Equal(t, "[DIR]  src\n[FILE] a.txt\n[FILE] b.txt", out)

	out, err = tool.Execute(context.Background(), `{"path":"`+filepath.Join(dir, "missing")+`"}`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Error listing directory: "), out)

	_, err = tool.Execute(context.Background(), `{"dir":"."}`)
	assert.Error(t, err)
	_, err = tool.Execute(context.Background(), `not json`)
	assert.Error(t, err)
}

func TestListFilesSkipsHidden(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".picode"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), nil, 0o644))
	t.Chdir(dir)

	tool := &ListFilesTool{fsAccess: &config.FilesystemAccess{Hidden: []string{".picode", ".picode/**"}}}
	out, err := tool.Execute(context.Background(), `{"path":"."}`)
	require.NoError(t, err)
	assert.Equal(t, "[FILE] main.go", out)

	_, err = tool.Execute(context.Background(), `{"path":".picode"}`)
	assert.Error(t, err)
}

func TestReadFileTruncates(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.txt")
	big := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(small, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("x", MaxReadChars+5)), 0o644))

	tool := &ReadFileTool{fsAccess: &config.FilesystemAccess{}}
	out, err := tool.Execute(context.Background(), `{"path":"`+small+`"}`)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = tool.Execute(context.Background(), `{"path":"`+big+`"}`)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\n... (truncated, file has 10005 chars)"))
	assert.Equal(t, MaxReadChars, strings.Index(out, "\n"))

	out, err = tool.Execute(context.Background(), `{"path":"`+filepath.Join(dir, "nope")+`"}`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Error reading file: "))
}

func TestWriteFileRespectsReadOnly(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	tool := &WriteFileTool{fsAccess: &config.FilesystemAccess{ReadOnly: []string{"vendor/**"}}}

	out, err := tool.Execute(context.Background(), `{"path":"notes.txt","content":"hi"}`)
	require.NoError(t, err)
	assert.Equal(t, "Successfully wrote 2 bytes to notes.txt", out)

	_, err = tool.Execute(context.Background(), `{"path":"vendor/x.go","content":"hi"}`)
	assert.ErrorContains(t, err, "read-only")
}

func TestIsCommandAllowed(t *testing.T) {
	assert.True(t, isCommandAllowed("rm -rf /tmp/x", nil, nil))
	allowed := []string{`^go (test|build)`, `^ls\b`}
	assert.True(t, isCommandAllowed("go test ./...", allowed, nil))
	assert.True(t, isCommandAllowed("ls -la", allowed, nil))
	assert.False(t, isCommandAllowed("curl example.com", allowed, nil))
	assert.False(t, isCommandAllowed("   ", allowed, nil))
}
