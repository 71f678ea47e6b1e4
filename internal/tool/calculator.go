package tool

import (
	"context"
	"strings"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/eval"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

// CalculatorTool evaluates arithmetic expressions with the safe evaluator.
// Expressions never touch an interpreter; see internal/eval.
type CalculatorTool struct {
	Eval *eval.Evaluator
}

func (t *CalculatorTool) Name() string { return "calculator" }
func (t *CalculatorTool) Description() string {
	return "Evaluate a mathematical expression. Supports +, -, *, /, //, %, **, comparisons, functions like sqrt, sin, log, factorial, and constants pi, e, tau, inf."
}
func (t *CalculatorTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Expression to evaluate, e.g. '2 + 2 * 3' or 'sqrt(16) / pi'",
			},
		},
		"required": []string{"expression"},
	}
}

func (t *CalculatorTool) Execute(_ context.Context, params map[string]any) (string, error) {
	raw, present := params["expression"]
	if !present {
		return errorJSON("expression is required"), nil
	}
	expr, isString := raw.(string)
	if !isString || strings.TrimSpace(expr) == "" {
		return jsonString(map[string]any{
			"error":      "Expression must be a non-empty string",
			"expression": raw,
		}), nil
	}

	ev := t.Eval
	if ev == nil {
		ev = eval.New()
	}

	result, err := ev.Evaluate(expr)
	if err != nil {
		msg := toolerr.Message(err)
		if toolerr.IsMath(err) {
			msg = "Math error: " + msg
		}
		return jsonString(map[string]any{
			"error":      msg,
			"expression": expr,
		}), nil
	}

	return jsonString(map[string]any{
		"expression": expr,
		"result":     result,
	}), nil
}
