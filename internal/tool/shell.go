package tool

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/shellexec"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

// ShellCommandTool executes a single allowlisted command inside the
// workspace. Pipes, redirection and substitution never reach a shell;
// see internal/shellexec.
type ShellCommandTool struct {
	Runner *shellexec.Runner
}

func (t *ShellCommandTool) Name() string { return "shell_command" }
func (t *ShellCommandTool) Description() string {
	return "Execute an allowlisted shell command in the workspace. Single command only, no pipes or redirection."
}
func (t *ShellCommandTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{"type": "string", "description": "Command line to run, e.g. 'ls -la' or 'git status'"},
			"timeout": map[string]any{"type": "integer", "description": "Timeout in seconds (1-60, default 30)"},
		},
		"required": []string{"command"},
	}
}

func (t *ShellCommandTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	command, envelope, ok := requiredParam(params, "command")
	if !ok {
		return envelope, nil
	}

	tokens, err := shellexec.Tokenize(command)
	if err != nil {
		return errorJSON(toolerr.Message(err)), nil
	}

	base := filepath.Base(tokens[0])
	if !shellexec.IsAllowed(base) {
		return jsonString(map[string]any{
			"error":            fmt.Sprintf("Command '%s' not in allowlist.", base),
			"allowed_commands": shellexec.Allowed(),
			"hint":             "Only safe, read-oriented commands are allowed for security.",
		}), nil
	}
	if err := shellexec.Validate(tokens); err != nil {
		return errorJSON(toolerr.Message(err)), nil
	}

	timeout := shellexec.DefaultTimeout
	if secs, ok := getNumber(params, "timeout"); ok {
		timeout = shellexec.ClampTimeout(time.Duration(secs * float64(time.Second)))
	}

	res, err := t.Runner.Run(ctx, tokens, timeout)
	if err != nil {
		return errorJSON(toolerr.Message(err)), nil
	}

	return jsonString(map[string]any{
		"stdout":           res.Stdout,
		"stderr":           res.Stderr,
		"returncode":       res.ExitCode,
		"command_executed": tokens,
	}), nil
}
