// Package tool implements the sandboxed tool runtime: the Tool interface,
// a registry with stable definition order, a dispatcher that turns any
// invocation into a bounded JSON envelope, and the built-in tools
// (calculator, datetime, filesystem, shell, web, memory).
package tool

import "context"

// Tool is the interface every tool must implement. Execute returns the
// payload handed back to the model; expected failures are encoded in the
// payload itself, the error return is for failures the tool could not
// translate.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema
	Execute(ctx context.Context, params map[string]any) (string, error)
}
