// Package eval evaluates arithmetic expressions without executing code.
//
// The grammar covers numeric literals, the operators + - * / // % ** with
// Python semantics (floor division, sign-of-divisor modulo, right-
// associative power), unary sign, chained comparisons, a fixed table of
// math functions and the constants pi, e, tau and inf. Nothing else parses:
// no strings, no attribute access, no subscripts, no assignment.
package eval

import (
	"math"
	"strings"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

const (
	// DefaultMaxLength bounds expression input size.
	DefaultMaxLength = 500
	// maxExponent bounds |exponent| for ** and pow().
	maxExponent = 1000
)

// Evaluator evaluates expressions. The zero value uses DefaultMaxLength.
type Evaluator struct {
	MaxLength int
}

// New returns an Evaluator with default limits.
func New() *Evaluator { return &Evaluator{MaxLength: DefaultMaxLength} }

// Evaluate parses and evaluates one expression. All failures carry a
// toolerr kind: KindValidation for rejected input, KindMath for
// division by zero and overflow.
func (e *Evaluator) Evaluate(expression string) (Value, error) {
	if strings.TrimSpace(expression) == "" {
		return Value{}, toolerr.New(toolerr.KindValidation, "Expression must be a non-empty string")
	}
	maxLen := e.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	if len(expression) > maxLen {
		return Value{}, toolerr.Newf(toolerr.KindValidation, "Expression too long. Max: %d characters", maxLen)
	}
	node, err := parse(expression)
	if err != nil {
		return Value{}, err
	}
	return evalNode(node)
}

var constantNames = []string{"pi", "e", "tau", "inf"}

var constants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
	"inf": math.Inf(1),
}

func evalNode(n Node) (Value, error) {
	switch node := n.(type) {
	case *NumericLiteral:
		return Number(node.Value), nil

	case *NamedConstant:
		if v, ok := constants[strings.ToLower(node.Name)]; ok {
			return Number(v), nil
		}
		return Value{}, toolerr.Newf(toolerr.KindValidation,
			"Unknown constant: %s. Allowed: %v", node.Name, constantNames)

	case *BinaryOp:
		left, err := evalNode(node.Left)
		if err != nil {
			return Value{}, err
		}
		right, err := evalNode(node.Right)
		if err != nil {
			return Value{}, err
		}
		return applyBinary(node.Op, left.Num(), right.Num())

	case *UnaryOp:
		v, err := evalNode(node.Operand)
		if err != nil {
			return Value{}, err
		}
		switch node.Op {
		case "-":
			return Number(-v.Num()), nil
		case "+":
			return Number(v.Num()), nil
		}
		return Value{}, toolerr.Newf(toolerr.KindValidation, "Unsupported unary operator: %s", node.Op)

	case *Call:
		fn, ok := functions[strings.ToLower(node.Func)]
		if !ok {
			return Value{}, toolerr.Newf(toolerr.KindValidation,
				"Unknown function: %s. Allowed: %v", node.Func, functionNames)
		}
		args := make([]float64, len(node.Args))
		for i, a := range node.Args {
			av, err := evalNode(a)
			if err != nil {
				return Value{}, err
			}
			args[i] = av.Num()
		}
		if err := fn.checkArity(len(args)); err != nil {
			return Value{}, err
		}
		res, err := fn.apply(args)
		if err != nil {
			return Value{}, err
		}
		return finite(res, args...)

	case *CompareChain:
		left, err := evalNode(node.First)
		if err != nil {
			return Value{}, err
		}
		for i, op := range node.Ops {
			right, err := evalNode(node.Rest[i])
			if err != nil {
				return Value{}, err
			}
			ok, err := compare(op, left.Num(), right.Num())
			if err != nil {
				return Value{}, err
			}
			if !ok {
				return Bool(false), nil
			}
			left = right
		}
		return Bool(true), nil
	}
	return Value{}, toolerr.Newf(toolerr.KindValidation, "Unsupported expression type: %T", n)
}

func applyBinary(op string, a, b float64) (Value, error) {
	switch op {
	case "+":
		return finite(a+b, a, b)
	case "-":
		return finite(a-b, a, b)
	case "*":
		return finite(a*b, a, b)
	case "/":
		if b == 0 {
			return Value{}, toolerr.New(toolerr.KindMath, "division by zero")
		}
		return finite(a/b, a, b)
	case "//":
		if b == 0 {
			return Value{}, toolerr.New(toolerr.KindMath, "floor division by zero")
		}
		return finite(math.Floor(a/b), a, b)
	case "%":
		if b == 0 {
			return Value{}, toolerr.New(toolerr.KindMath, "modulo by zero")
		}
		return finite(pymod(a, b), a, b)
	case "**":
		if math.Abs(b) > maxExponent {
			return Value{}, toolerr.New(toolerr.KindValidation, "Exponent too large (max 1000)")
		}
		return finite(math.Pow(a, b), a, b)
	}
	return Value{}, toolerr.Newf(toolerr.KindValidation, "Unsupported operator: %s", op)
}

func compare(op string, a, b float64) (bool, error) {
	switch op {
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	case "==":
		return a == b, nil
	case "!=":
		return a != b, nil
	}
	return false, toolerr.Newf(toolerr.KindValidation, "Unsupported comparison: %s", op)
}

// pymod implements Python's % semantics: the result takes the divisor's sign.
func pymod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// finite converts overflow into errors: a result of Inf or NaN from
// entirely finite operands is reported instead of propagated silently.
// Operands that are already non-finite (the inf constant) pass through.
func finite(result float64, operands ...float64) (Value, error) {
	for _, op := range operands {
		if math.IsInf(op, 0) || math.IsNaN(op) {
			return Number(result), nil
		}
	}
	if math.IsInf(result, 0) {
		return Value{}, toolerr.New(toolerr.KindMath, "math range error")
	}
	if math.IsNaN(result) {
		return Value{}, toolerr.New(toolerr.KindValidation, "math domain error")
	}
	return Number(result), nil
}
