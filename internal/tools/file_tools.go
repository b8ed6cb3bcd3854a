package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// File tool limits.
const (
	// MaxReadFileBytes caps read_file payloads before registry-level
	// truncation even applies.
	MaxReadFileBytes = 50 * 1024

	// MaxListEntries caps directory listings.
	MaxListEntries = 200
)

// FileTools provides workspace-scoped file operations. Every path is
// resolved relative to the workspace root and anything that would
// land outside it is rejected.
type FileTools struct {
	workspace string
	logger    *slog.Logger
}

// NewFileTools creates a FileTools rooted at workspace. An empty
// workspace disables the tools.
func NewFileTools(workspace string, logger *slog.Logger) *FileTools {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileTools{
		workspace: workspace,
		logger:    logger.With("component", "file_tools"),
	}
}

// Enabled reports whether a workspace is configured.
func (ft *FileTools) Enabled() bool {
	return ft.workspace != ""
}

// resolvePath converts a tool-supplied path to an absolute path inside
// the workspace. Absolute input paths and traversal out of the
// workspace are rejected.
func (ft *FileTools) resolvePath(path string) (string, error) {
	if ft.workspace == "" {
		return "", Invalid("workspace not configured")
	}
	if filepath.IsAbs(path) {
		return "", PermissionDenied("absolute paths are not allowed: %s", path)
	}

	root, err := filepath.Abs(ft.workspace)
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}

	abs := filepath.Clean(filepath.Join(root, path))
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", PermissionDenied("path escapes workspace: %s", path)
	}

	return abs, nil
}

// List returns the names of visible entries in a workspace directory.
// Dotfiles are hidden, directories get a trailing slash, and the
// listing is capped at MaxListEntries.
func (ft *FileTools) List(ctx context.Context, dir string) ([]string, error) {
	abs, err := ft.resolvePath(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotFound("directory not found: %s", dir)
		}
		if os.IsPermission(err) {
			return nil, PermissionDenied("cannot read directory: %s", dir)
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > MaxListEntries {
		hidden := len(names) - MaxListEntries
		names = names[:MaxListEntries]
		names = append(names, fmt.Sprintf("... (%d more entries)", hidden))
	}

	return names, nil
}

// Read returns a file's contents. Oversize and non-text files are
// rejected rather than passed to the model.
func (ft *FileTools) Read(ctx context.Context, path string) (string, error) {
	abs, err := ft.resolvePath(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", NotFound("file not found: %s", path)
		}
		return "", fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return "", Invalid("%s is a directory", path)
	}
	if info.Size() > MaxReadFileBytes {
		return "", Errorf(KindTruncated, "file %s is %d bytes, over the %d byte read limit", path, info.Size(), MaxReadFileBytes)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsPermission(err) {
			return "", PermissionDenied("cannot read file: %s", path)
		}
		return "", fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", Invalid("file %s is not valid UTF-8 text", path)
	}

	return string(data), nil
}

// Write stores content at path, creating parent directories and
// overwriting any existing file.
func (ft *FileTools) Write(ctx context.Context, path, content string) (string, error) {
	abs, err := ft.resolvePath(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		if os.IsPermission(err) {
			return "", PermissionDenied("cannot write file: %s", path)
		}
		return "", fmt.Errorf("write file: %w", err)
	}

	ft.logger.Debug("file written", "path", path, "bytes", len(content))
	return fmt.Sprintf("wrote %d bytes to %s", len(content), path), nil
}

// RegisterFileTools adds the three workspace file tools to the
// registry.
func RegisterFileTools(r *Registry, ft *FileTools) {
	r.Register(&Tool{
		Name:        "list_files",
		Description: "List files and directories in the workspace. Hidden entries (dotfiles) are omitted; directories end with a slash.",
		Params: []Param{
			{Name: "directory", Type: "string", Description: "Directory relative to the workspace root (default: the root itself)"},
		},
		Effect: EffectReadLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			dir, _ := args["directory"].(string)
			if dir == "" {
				dir = "."
			}
			names, err := ft.List(ctx, dir)
			if err != nil {
				return "", err
			}
			if len(names) == 0 {
				return fmt.Sprintf("%s is empty", dir), nil
			}
			return strings.Join(names, "\n"), nil
		},
	})

	r.Register(&Tool{
		Name:        "read_file",
		Description: "Read a text file from the workspace.",
		Params: []Param{
			{Name: "path", Type: "string", Description: "File path relative to the workspace root", Required: true},
		},
		Effect: EffectReadLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			path, _ := args["path"].(string)
			return ft.Read(ctx, path)
		},
	})

	r.Register(&Tool{
		Name:        "write_file",
		Description: "Write a text file in the workspace, creating parent directories and overwriting any existing file.",
		Params: []Param{
			{Name: "path", Type: "string", Description: "File path relative to the workspace root", Required: true},
			{Name: "content", Type: "string", Description: "Full file content to write", Required: true},
		},
		Effect: EffectWriteLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			path, _ := args["path"].(string)
			content, _ := args["content"].(string)
			return ft.Write(ctx, path, content)
		},
	})
}
