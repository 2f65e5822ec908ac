package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m4xw311/picode/config"
	"github.com/m4xw311/picode/errors"
)

// MaxReadChars caps the text read_file returns to the model.
const MaxReadChars = 10_000

type pathArgs struct {
	Path string `json:"path" jsonschema:"description=Absolute or relative path"`
}

type writeArgs struct {
	Path    string `json:"path" jsonschema:"description=File path to write"`
	Content string `json:"content" jsonschema:"description=Full new content of the file"`
}

func checkHidden(path string, fsAccess *config.FilesystemAccess) error {
	hidden, err := isPathRestricted(path, fsAccess.Hidden)
	if err != nil {
		return err
	}
	if hidden {
		return errors.New("access denied: path '%s' is hidden", path)
	}
	return nil
}

// ListFilesTool lists the entries of a directory.
type ListFilesTool struct {
	fsAccess *config.FilesystemAccess
}

func (t *ListFilesTool) Name() string { return "list_files" }
func (t *ListFilesTool) Description() string {
	return "List files and directories at the given path."
}
func (t *ListFilesTool) Parameters() map[string]any { return schemaFor(&pathArgs{}) }

func (t *ListFilesTool) Execute(ctx context.Context, raw string) (string, error) {
	args, err := parseArgs(raw)
	if err != nil {
		return "", err
	}
	dir, err := stringArg(args, "path")
	if err != nil {
		return "", err
	}
	if err := checkHidden(dir, t.fsAccess); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Sprintf("Error listing directory: %v", err), nil
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if hidden, _ := isPathRestricted(filepath.Join(dir, e.Name()), t.fsAccess.Hidden); hidden {
			continue
		}
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dir, e.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		if isDir {
			lines = append(lines, "[DIR]  "+e.Name())
		} else {
			lines = append(lines, "[FILE] "+e.Name())
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}

// ReadFileTool returns the content of a file, truncated to MaxReadChars.
type ReadFileTool struct {
	fsAccess *config.FilesystemAccess
}

func (t *ReadFileTool) Name() string { return "read_file" }
func (t *ReadFileTool) Description() string {
	return "Read the contents of a file at the given path."
}
func (t *ReadFileTool) Parameters() map[string]any { return schemaFor(&pathArgs{}) }

func (t *ReadFileTool) Execute(ctx context.Context, raw string) (string, error) {
	args, err := parseArgs(raw)
	if err != nil {
		return "", err
	}
	path, err := stringArg(args, "path")
	if err != nil {
		return "", err
	}
	if err := checkHidden(path, t.fsAccess); err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err), nil
	}
	text, total, truncated := truncateRunes(string(content), MaxReadChars)
	if truncated {
		return fmt.Sprintf("%s\n... (truncated, file has %d chars)", text, total), nil
	}
	return text, nil
}

// WriteFileTool replaces the content of a file, honouring read-only globs.
type WriteFileTool struct {
	fsAccess *config.FilesystemAccess
}

func (t *WriteFileTool) Name() string { return "write_file" }
func (t *WriteFileTool) Description() string {
	return "Write content to a file, replacing it entirely."
}
func (t *WriteFileTool) Parameters() map[string]any { return schemaFor(&writeArgs{}) }

func (t *WriteFileTool) Execute(ctx context.Context, raw string) (string, error) {
	args, err := parseArgs(raw)
	if err != nil {
		return "", err
	}
	path, err := stringArg(args, "path")
	if err != nil {
		return "", err
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return "", err
	}
	if err := checkHidden(path, t.fsAccess); err != nil {
		return "", err
	}
	readOnly, err := isPathRestricted(path, t.fsAccess.ReadOnly)
	if err != nil {
		return "", err
	}
	if readOnly {
		return "", errors.New("access denied: path '%s' is read-only", path)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write to file '%s'", path)
	}
	return fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), path), nil
}
