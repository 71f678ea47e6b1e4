// Package shellexec runs allowlisted commands without a shell.
//
// A command string is tokenized with quote awareness, checked against a
// fixed allowlist of read-oriented programs, scanned for shell
// metacharacters, and only then spawned directly as an argv vector. No
// /bin/sh is ever involved, so rejected input cannot reach an interpreter.
package shellexec

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

// allowedCommands is matched on the basename of the first token.
var allowedCommands = map[string]bool{
	"ls": true, "cat": true, "head": true, "tail": true, "grep": true,
	"find": true, "wc": true, "echo": true, "pwd": true, "date": true,
	"git": true, "python": true, "python3": true, "pip": true,
	"which": true, "whoami": true, "hostname": true, "uname": true,
	"tree": true, "file": true, "stat": true, "du": true, "df": true,
	"env": true, "printenv": true, "sort": true, "uniq": true,
	"diff": true, "less": true, "more": true, "awk": true, "sed": true,
	"cut": true, "tr": true, "tee": true, "xargs": true,
}

// metachars are blocked in every argument. With no shell in the pipeline
// they would be inert, but blocking them also stops injection into programs
// that shell out themselves (git hooks, xargs).
const metachars = ";&|`$(){}[]<>!\\\n\r"

// Tokenize splits command into an argv vector with quote awareness. Input
// is NFKC-normalized first so full-width lookalikes cannot smuggle
// metacharacters past the scan.
func Tokenize(command string) ([]string, error) {
	command = norm.NFKC.String(command)

	var (
		tokens             []string
		cur                strings.Builder
		started            bool
		inSingle, inDouble bool
		escaped            bool
	)
	for _, r := range command {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && !inSingle:
			escaped = true
			started = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			started = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			started = true
		case (r == ' ' || r == '\t') && !inSingle && !inDouble:
			if started {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if escaped {
		return nil, toolerr.New(toolerr.KindValidation, "Invalid command syntax: trailing backslash")
	}
	if inSingle || inDouble {
		return nil, toolerr.New(toolerr.KindValidation, "Invalid command syntax: unclosed quote in command")
	}
	if started {
		tokens = append(tokens, cur.String())
	}
	if len(tokens) == 0 {
		return nil, toolerr.New(toolerr.KindValidation, "Empty command")
	}
	return tokens, nil
}

// Validate enforces the allowlist on the program and the metacharacter ban
// on every argument. It never spawns anything.
func Validate(tokens []string) error {
	base := filepath.Base(tokens[0])
	if !allowedCommands[base] {
		return toolerr.Newf(toolerr.KindSecurity, "Command '%s' not in allowlist.", base)
	}
	for i, arg := range tokens[1:] {
		if found := metacharsIn(arg); len(found) > 0 {
			return toolerr.Newf(toolerr.KindSecurity,
				"Shell metacharacter detected in argument %d. These are blocked for security: %s",
				i+1, strings.Join(found, " "))
		}
	}
	return nil
}

// IsAllowed reports whether name (a program basename) is on the allowlist.
func IsAllowed(name string) bool {
	return allowedCommands[name]
}

// Allowed returns the sorted command allowlist for error envelopes.
func Allowed() []string {
	out := make([]string, 0, len(allowedCommands))
	for name := range allowedCommands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func metacharsIn(s string) []string {
	seen := map[rune]bool{}
	var found []string
	for _, r := range s {
		if strings.ContainsRune(metachars, r) && !seen[r] {
			seen[r] = true
			found = append(found, string(r))
		}
	}
	sort.Strings(found)
	return found
}
