package tool

import (
	"context"
	"time"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/memory"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

// scopeParam extracts and validates the scope parameter shared by the
// memory tools. The second return is a ready envelope on failure.
func scopeParam(params map[string]any) (string, string, bool) {
	scope, envelope, ok := requiredParam(params, "scope")
	if !ok {
		return "", envelope, false
	}
	if err := memory.ValidateScope(scope); err != nil {
		return "", errorJSON(toolerr.Message(err)), false
	}
	return scope, "", true
}

// --- MemoryRead ---

// MemoryReadTool reads a memory scope's content.
type MemoryReadTool struct {
	Store *memory.Store
}

func (t *MemoryReadTool) Name() string { return "memory_read" }
func (t *MemoryReadTool) Description() string {
	return "Read the content of a persistent memory scope."
}
func (t *MemoryReadTool) Parameters() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"scope"},
		"properties": map[string]any{
			"scope": map[string]any{
				"type":        "string",
				"description": "Name of the memory scope (e.g. project, preferences, team).",
			},
		},
	}
}

func (t *MemoryReadTool) Execute(_ context.Context, params map[string]any) (string, error) {
	scope, envelope, ok := scopeParam(params)
	if !ok {
		return envelope, nil
	}

	content, found, err := t.Store.Get(scope)
	if err != nil {
		return errorJSON(err.Error()), nil
	}
	if !found {
		return jsonString(map[string]any{
			"scope":   scope,
			"content": "",
			"note":    "Memory scope is empty or does not exist.",
		}), nil
	}
	return jsonString(map[string]any{
		"scope":   scope,
		"content": content,
	}), nil
}

// --- MemoryWrite ---

// MemoryWriteTool writes content to a memory scope, replacing any
// existing content.
type MemoryWriteTool struct {
	Store *memory.Store
}

func (t *MemoryWriteTool) Name() string { return "memory_write" }
func (t *MemoryWriteTool) Description() string {
	return "Write content to a persistent memory scope, replacing any existing content."
}
func (t *MemoryWriteTool) Parameters() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"scope", "content"},
		"properties": map[string]any{
			"scope": map[string]any{
				"type":        "string",
				"description": "Name of the memory scope (e.g. project, preferences, team).",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The content to store.",
			},
		},
	}
}

func (t *MemoryWriteTool) Execute(_ context.Context, params map[string]any) (string, error) {
	scope, envelope, ok := scopeParam(params)
	if !ok {
		return envelope, nil
	}
	content := getString(params, "content")
	if content == "" {
		return errorJSON("content is required"), nil
	}

	if err := t.Store.Set(scope, content); err != nil {
		return errorJSON(err.Error()), nil
	}
	return jsonString(map[string]any{
		"status": "ok",
		"scope":  scope,
		"bytes":  len(content),
	}), nil
}

// --- MemoryList ---

// MemoryListTool lists all memory scopes.
type MemoryListTool struct {
	Store *memory.Store
}

func (t *MemoryListTool) Name() string { return "memory_list" }
func (t *MemoryListTool) Description() string {
	return "List all persistent memory scopes with sizes and update times."
}
func (t *MemoryListTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *MemoryListTool) Execute(_ context.Context, _ map[string]any) (string, error) {
	scopes, err := t.Store.List()
	if err != nil {
		return errorJSON(err.Error()), nil
	}

	type scopeInfo struct {
		Name      string `json:"name"`
		Bytes     int    `json:"bytes"`
		UpdatedAt string `json:"updated_at"`
	}
	infos := make([]scopeInfo, 0, len(scopes))
	for _, s := range scopes {
		infos = append(infos, scopeInfo{
			Name:      s.Name,
			Bytes:     len(s.Content),
			UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return jsonString(map[string]any{
		"scopes": infos,
		"count":  len(infos),
	}), nil
}

// --- MemoryDelete ---

// MemoryDeleteTool removes a memory scope.
type MemoryDeleteTool struct {
	Store *memory.Store
}

func (t *MemoryDeleteTool) Name() string { return "memory_delete" }
func (t *MemoryDeleteTool) Description() string {
	return "Delete a persistent memory scope."
}
func (t *MemoryDeleteTool) Parameters() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"scope"},
		"properties": map[string]any{
			"scope": map[string]any{
				"type":        "string",
				"description": "Name of the memory scope to delete.",
			},
		},
	}
}

func (t *MemoryDeleteTool) Execute(_ context.Context, params map[string]any) (string, error) {
	scope, envelope, ok := scopeParam(params)
	if !ok {
		return envelope, nil
	}

	removed, err := t.Store.Delete(scope)
	if err != nil {
		return errorJSON(err.Error()), nil
	}
	if !removed {
		return errorJSON("Memory scope not found: " + scope), nil
	}
	return jsonString(map[string]any{
		"status": "ok",
		"scope":  scope,
	}), nil
}
