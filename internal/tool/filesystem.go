package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/workspace"
)

const (
	defaultMaxLines = 200
	maxMaxLines     = 1000
)

// pathError is the failure envelope shared by the file tools.
func pathError(msg, path string) string {
	return jsonString(map[string]any{"error": msg, "path": path})
}

// splitLines mirrors line counting of text editors: a trailing newline
// does not start an empty final line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// --- ReadFile ---

// ReadFileTool reads a workspace file with a line cap.
type ReadFileTool struct {
	WS *workspace.Workspace
}

func (t *ReadFileTool) Name() string { return "read_file" }
func (t *ReadFileTool) Description() string {
	return "Read a text file from the workspace. Returns at most max_lines lines."
}
func (t *ReadFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{"type": "string", "description": "File path relative to the workspace"},
			"max_lines": map[string]any{
				"type":        "integer",
				"description": "Maximum number of lines to return (1-1000, default 200)",
			},
		},
		"required": []string{"path"},
	}
}

func (t *ReadFileTool) Execute(_ context.Context, params map[string]any) (string, error) {
	path, envelope, ok := requiredParam(params, "path")
	if !ok {
		return envelope, nil
	}

	maxLines := defaultMaxLines
	if n, ok := getNumber(params, "max_lines"); ok {
		maxLines = int(n)
		if maxLines < 1 {
			maxLines = 1
		}
		if maxLines > maxMaxLines {
			maxLines = maxMaxLines
		}
	}

	abs, err := t.WS.Resolve(path, true)
	if err != nil {
		return pathError(toolerr.Message(err), path), nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		return pathError("File not found: "+path, path), nil
	}
	if info.IsDir() {
		return pathError("Is a directory: "+path, path), nil
	}
	if !info.Mode().IsRegular() {
		return pathError("Not a file: "+path, path), nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsPermission(err) {
			return pathError("Permission denied: "+path, path), nil
		}
		return pathError(err.Error(), path), nil
	}

	lines := splitLines(strings.ToValidUTF8(string(data), "�"))
	total := len(lines)
	returned := lines
	if total > maxLines {
		returned = lines[:maxLines]
	}

	return jsonString(map[string]any{
		"path":           t.WS.Rel(abs),
		"total_lines":    total,
		"returned_lines": len(returned),
		"truncated":      total > maxLines,
		"content":        strings.Join(returned, "\n"),
	}), nil
}

// --- WriteFile ---

// WriteFileTool writes a workspace file, creating parent directories.
type WriteFileTool struct {
	WS *workspace.Workspace
}

func (t *WriteFileTool) Name() string { return "write_file" }
func (t *WriteFileTool) Description() string {
	return "Write content to a workspace file. Only allowlisted file types; sensitive files are refused."
}
func (t *WriteFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":    map[string]any{"type": "string", "description": "File path relative to the workspace"},
			"content": map[string]any{"type": "string", "description": "Content to write"},
		},
		"required": []string{"path", "content"},
	}
}

func (t *WriteFileTool) Execute(_ context.Context, params map[string]any) (string, error) {
	path, envelope, ok := requiredParam(params, "path")
	if !ok {
		return envelope, nil
	}
	if _, present := params["content"]; !present {
		return errorJSON("content is required"), nil
	}
	content := getString(params, "content")

	if len(content) > workspace.MaxWriteSize {
		return jsonString(map[string]any{
			"error": fmt.Sprintf("Content too large. Max size: %d bytes (%dKB)",
				workspace.MaxWriteSize, workspace.MaxWriteSize/1024),
			"path":         path,
			"content_size": len(content),
		}), nil
	}

	abs, err := t.WS.Resolve(path, false)
	if err != nil {
		return pathError(toolerr.Message(err), path), nil
	}
	if err := t.WS.CheckExtension(abs); err != nil {
		return pathError(toolerr.Message(err), path), nil
	}
	if err := t.WS.CheckWrite(abs, len(content)); err != nil {
		return pathError(toolerr.Message(err), path), nil
	}

	action := "created"
	if _, err := os.Stat(abs); err == nil {
		action = "overwritten"
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return pathError("Could not create parent directory: "+err.Error(), path), nil
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		if os.IsPermission(err) {
			return pathError("Permission denied: "+path, path), nil
		}
		return pathError(err.Error(), path), nil
	}

	return jsonString(map[string]any{
		"status":        "ok",
		"path":          t.WS.Rel(abs),
		"bytes_written": len(content),
		"action":        action,
	}), nil
}

// --- EditFile ---

// EditFileTool replaces a unique old_text occurrence in a workspace file.
type EditFileTool struct {
	WS *workspace.Workspace
}

func (t *EditFileTool) Name() string { return "edit_file" }
func (t *EditFileTool) Description() string {
	return "Replace old_text with new_text in a workspace file. old_text must match exactly once."
}
func (t *EditFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":     map[string]any{"type": "string", "description": "File path relative to the workspace"},
			"old_text": map[string]any{"type": "string", "description": "Text to find (must be unique in the file)"},
			"new_text": map[string]any{"type": "string", "description": "Replacement text"},
		},
		"required": []string{"path", "old_text", "new_text"},
	}
}

func (t *EditFileTool) Execute(_ context.Context, params map[string]any) (string, error) {
	path, envelope, ok := requiredParam(params, "path")
	if !ok {
		return envelope, nil
	}
	oldText, envelope, ok := requiredParam(params, "old_text")
	if !ok {
		return envelope, nil
	}
	newText, envelope, ok := requiredParam(params, "new_text")
	if !ok {
		return envelope, nil
	}

	abs, err := t.WS.Resolve(path, true)
	if err != nil {
		return pathError(toolerr.Message(err), path), nil
	}
	if err := t.WS.CheckExtension(abs); err != nil {
		return pathError(toolerr.Message(err), path), nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsPermission(err) {
			return pathError("Permission denied: "+path, path), nil
		}
		return pathError(err.Error(), path), nil
	}
	content := string(data)

	count := strings.Count(content, oldText)
	if count == 0 {
		return pathError("old_text not found in file", path), nil
	}
	if count > 1 {
		return pathError(fmt.Sprintf("old_text matches %d times (must be unique)", count), path), nil
	}

	result := strings.Replace(content, oldText, newText, 1)
	if err := t.WS.CheckWrite(abs, len(result)); err != nil {
		return pathError(toolerr.Message(err), path), nil
	}
	if err := os.WriteFile(abs, []byte(result), 0o644); err != nil {
		return pathError(err.Error(), path), nil
	}

	return jsonString(map[string]any{
		"status":       "ok",
		"path":         t.WS.Rel(abs),
		"replacements": 1,
	}), nil
}

// --- ListDir ---

// ListDirTool lists a workspace directory, directories first.
type ListDirTool struct {
	WS *workspace.Workspace
}

func (t *ListDirTool) Name() string { return "list_dir" }
func (t *ListDirTool) Description() string {
	return "List the entries of a workspace directory with types and sizes."
}
func (t *ListDirTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{"type": "string", "description": "Directory path relative to the workspace (default: workspace root)"},
		},
	}
}

func (t *ListDirTool) Execute(_ context.Context, params map[string]any) (string, error) {
	path := getString(params, "path")
	if path == "" {
		path = "."
	}

	abs, err := t.WS.Resolve(path, true)
	if err != nil {
		return pathError(toolerr.Message(err), path), nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		return pathError("File not found: "+path, path), nil
	}
	if !info.IsDir() {
		return pathError("Not a directory: "+path, path), nil
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsPermission(err) {
			return pathError("Permission denied: "+path, path), nil
		}
		return pathError(err.Error(), path), nil
	}

	type entry struct {
		Name      string `json:"name"`
		Type      string `json:"type"`
		SizeBytes int64  `json:"size_bytes"`
	}
	entries := make([]entry, 0, len(dirEntries))
	for _, e := range dirEntries {
		if e.IsDir() {
			entries = append(entries, entry{Name: e.Name(), Type: "dir"})
			continue
		}
		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		entries = append(entries, entry{Name: e.Name(), Type: "file", SizeBytes: size})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type == "dir"
		}
		return entries[i].Name < entries[j].Name
	})

	return jsonString(map[string]any{
		"path":    t.WS.Rel(abs),
		"entries": entries,
		"count":   len(entries),
	}), nil
}
