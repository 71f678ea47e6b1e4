// Package workspace confines filesystem tool access to a root directory.
//
// Every path a tool touches goes through Resolve, which canonicalizes the
// input (absolute, symlinks evaluated) and rejects anything that lands
// outside the root. Writes additionally pass the extension allowlist and
// the sensitive-file and size guards.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

// MaxWriteSize caps write payloads at 1MB.
const MaxWriteSize = 1_000_000

var allowedExtensions = map[string]bool{
	".py": true, ".md": true, ".txt": true, ".json": true, ".yaml": true,
	".yml": true, ".toml": true, ".cfg": true, ".ini": true, ".js": true,
	".ts": true, ".jsx": true, ".tsx": true, ".css": true, ".html": true,
	".sh": true, ".bash": true, ".zsh": true,
}

// allowedNames admits extensionless files and special dotfiles by exact name.
var allowedNames = map[string]bool{
	"Dockerfile": true, "Makefile": true, ".gitignore": true,
	".dockerignore": true, ".env.example": true,
}

// sensitiveNames are never writable even when the extension check passes:
// shell profiles and credential files.
var sensitiveNames = map[string]bool{
	".bashrc": true, ".bash_profile": true, ".bash_login": true,
	".bash_logout": true, ".profile": true, ".zshrc": true, ".zprofile": true,
	".zlogin": true, ".zlogout": true, ".netrc": true, ".env": true,
	".git-credentials": true, "credentials.json": true, "secrets.json": true,
	"secrets.yaml": true, "secrets.yml": true, "id_rsa": true,
	"id_ed25519": true, "authorized_keys": true, "known_hosts": true,
}

// Workspace anchors all filesystem tool access under one directory.
type Workspace struct {
	root string // absolute, symlink-resolved
}

// New resolves root and returns a Workspace. The root must exist.
func New(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root %s: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root %s: %w", root, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("workspace: stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace: root %s is not a directory", root)
	}
	return &Workspace{root: resolved}, nil
}

// Root returns the resolved workspace root.
func (w *Workspace) Root() string { return w.root }

// Resolve validates path and returns its canonical absolute form inside the
// workspace. Relative paths are joined to the root. With mustExist set, a
// missing file is a not-found error rather than a candidate for creation.
func (w *Workspace) Resolve(path string, mustExist bool) (string, error) {
	if path == "" {
		return "", toolerr.New(toolerr.KindValidation, "Path must be a non-empty string")
	}
	if strings.ContainsRune(path, 0) {
		return "", toolerr.New(toolerr.KindValidation, "Null bytes not allowed in path")
	}
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(w.root, candidate)
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", toolerr.Newf(toolerr.KindValidation, "Invalid path: %v", err)
	}
	resolved, err := resolveSymlinks(abs)
	if err != nil {
		return "", toolerr.Newf(toolerr.KindValidation, "Invalid path: %v", err)
	}
	if !within(resolved, w.root) {
		return "", toolerr.New(toolerr.KindSecurity,
			"Path traversal detected: access denied. Path must be within workspace.")
	}
	if mustExist {
		if _, err := os.Stat(resolved); err != nil {
			if os.IsNotExist(err) {
				return "", toolerr.Newf(toolerr.KindNotFound, "File not found: %s", path)
			}
			return "", toolerr.Newf(toolerr.KindRuntime, "Cannot access path: %v", err)
		}
	}
	return resolved, nil
}

// Rel returns path relative to the root for display in tool envelopes.
func (w *Workspace) Rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return rel
}

// CheckExtension enforces the write-side file type allowlist.
func (w *Workspace) CheckExtension(path string) error {
	name := filepath.Base(path)
	if allowedNames[name] {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(name))
	if allowedExtensions[ext] {
		return nil
	}
	display := ext
	if display == "" {
		display = name
	}
	return toolerr.Newf(toolerr.KindValidation,
		"File type '%s' not allowed. Allowed extensions: %v", display, AllowedExtensions())
}

// CheckWrite enforces the payload size cap and the sensitive-file refusal.
func (w *Workspace) CheckWrite(path string, size int) error {
	if size > MaxWriteSize {
		return toolerr.Newf(toolerr.KindValidation,
			"Content too large. Max size: %d bytes (976KB)", MaxWriteSize)
	}
	if name := filepath.Base(path); sensitiveNames[name] {
		return toolerr.Newf(toolerr.KindSecurity, "Refusing to write sensitive file: %s", name)
	}
	return nil
}

// AllowedExtensions returns the sorted allowlist (extensions and exact names).
func AllowedExtensions() []string {
	out := make([]string, 0, len(allowedExtensions)+len(allowedNames))
	for ext := range allowedExtensions {
		out = append(out, ext)
	}
	for name := range allowedNames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// resolveSymlinks evaluates symlinks in abs. When the leaf does not exist
// yet, the deepest existing ancestor is resolved and the missing remainder
// re-joined, so a symlinked parent cannot place a new file outside the root.
func resolveSymlinks(abs string) (string, error) {
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	var missing []string
	cur := filepath.Clean(abs)
	for {
		if _, err := os.Lstat(cur); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		missing = append([]string{filepath.Base(cur)}, missing...)
		cur = parent
	}
	base, err := filepath.EvalSymlinks(cur)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{base}, missing...)...), nil
}

// within reports whether path is root itself or inside it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
