package tool

import (
	"context"
	"math"
	"strings"
	"testing"
)

func calcEnvelope(t *testing.T, params map[string]any) map[string]any {
	t.Helper()
	tool := &CalculatorTool{}
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	return decodeEnvelope(t, result)
}

func TestCalculator_Numbers(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		{"2 + 2 * 3", 8},
		{"sqrt(144)", 12},
		{"10 / 4", 2.5},
		{"2 ** 10", 1024},
		{"-7 // 2", -4},
		{"(1 < 2) + 1", 2},
		{"pi", math.Pi},
	}
	for _, tc := range cases {
		env := calcEnvelope(t, map[string]any{"expression": tc.expr})
		if env["error"] != nil {
			t.Errorf("%q: unexpected error %v", tc.expr, env["error"])
			continue
		}
		if env["expression"] != tc.expr {
			t.Errorf("%q: expression echoed as %v", tc.expr, env["expression"])
		}
		got, ok := env["result"].(float64)
		if !ok || math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%q: result = %v, want %v", tc.expr, env["result"], tc.want)
		}
	}
}

func TestCalculator_Booleans(t *testing.T) {
	env := calcEnvelope(t, map[string]any{"expression": "3 > 2"})
	if env["result"] != true {
		t.Errorf("result = %v, want true", env["result"])
	}

	env = calcEnvelope(t, map[string]any{"expression": "1 <= 0"})
	if env["result"] != false {
		t.Errorf("result = %v, want false", env["result"])
	}
}

func TestCalculator_InfinityRendering(t *testing.T) {
	env := calcEnvelope(t, map[string]any{"expression": "inf"})
	if env["result"] != "Infinity" {
		t.Errorf("result = %v, want \"Infinity\"", env["result"])
	}
}

func TestCalculator_MathErrors(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"1 / 0", "Math error: division by zero"},
		{"5 // 0", "Math error: floor division by zero"},
		{"7 % 0", "Math error: modulo by zero"},
	}
	for _, tc := range cases {
		env := calcEnvelope(t, map[string]any{"expression": tc.expr})
		if env["error"] != tc.want {
			t.Errorf("%q: error = %v, want %q", tc.expr, env["error"], tc.want)
		}
		if env["expression"] != tc.expr {
			t.Errorf("%q: expression echoed as %v", tc.expr, env["expression"])
		}
	}
}

func TestCalculator_DomainErrorsHaveNoMathPrefix(t *testing.T) {
	for _, expr := range []string{"sqrt(-1)", "log(0)", "asin(2)"} {
		env := calcEnvelope(t, map[string]any{"expression": expr})
		got, _ := env["error"].(string)
		if got != "math domain error" {
			t.Errorf("%q: error = %q, want \"math domain error\"", expr, got)
		}
	}
}

func TestCalculator_ValidationErrors(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"2 +", "Invalid expression syntax"},
		{"__import__('os')", "Invalid expression syntax"},
		{"spam(1)", "Unknown function: spam"},
		{"x + 1", "Unknown constant: x"},
		{"2 ** 100000", "Exponent too large"},
	}
	for _, tc := range cases {
		env := calcEnvelope(t, map[string]any{"expression": tc.expr})
		got, _ := env["error"].(string)
		if !strings.Contains(got, tc.want) {
			t.Errorf("%q: error = %q, want substring %q", tc.expr, got, tc.want)
		}
	}
}

func TestCalculator_RequiresExpression(t *testing.T) {
	env := calcEnvelope(t, map[string]any{})
	if env["error"] != "expression is required" {
		t.Errorf("error = %v", env["error"])
	}

	env = calcEnvelope(t, map[string]any{"expression": ""})
	if env["error"] != "Expression must be a non-empty string" {
		t.Errorf("empty: error = %v", env["error"])
	}

	env = calcEnvelope(t, map[string]any{"expression": 42})
	if env["error"] != "Expression must be a non-empty string" {
		t.Errorf("non-string: error = %v", env["error"])
	}
}
