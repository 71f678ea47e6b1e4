package eval

import (
	"math"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

// function is one whitelisted math function. maxArgs of -1 means variadic.
type function struct {
	name    string
	minArgs int
	maxArgs int
	apply   func(args []float64) (float64, error)
}

func (f function) checkArity(n int) error {
	word := "arguments"
	if f.minArgs == 1 {
		word = "argument"
	}
	switch {
	case f.minArgs == f.maxArgs && n != f.minArgs:
		return toolerr.Newf(toolerr.KindValidation,
			"%s() takes exactly %d %s (%d given)", f.name, f.minArgs, word, n)
	case n < f.minArgs:
		return toolerr.Newf(toolerr.KindValidation,
			"%s() requires at least %d %s (%d given)", f.name, f.minArgs, word, n)
	case f.maxArgs > 0 && n > f.maxArgs:
		return toolerr.Newf(toolerr.KindValidation,
			"%s() takes at most %d arguments (%d given)", f.name, f.maxArgs, n)
	}
	return nil
}

// functionNames lists registered functions in declaration order; the
// "Unknown function" message enumerates it.
var (
	functionNames []string
	functions     = map[string]function{}
)

func register(f function) {
	functions[f.name] = f
	functionNames = append(functionNames, f.name)
}

func unary(name string, f func(float64) float64) function {
	return function{name: name, minArgs: 1, maxArgs: 1,
		apply: func(a []float64) (float64, error) { return f(a[0]), nil }}
}

// unaryDomain wraps a unary function with a domain predicate; out-of-domain
// input reports "math domain error" the way math.sqrt(-1) does.
func unaryDomain(name string, ok func(float64) bool, f func(float64) float64) function {
	return function{name: name, minArgs: 1, maxArgs: 1,
		apply: func(a []float64) (float64, error) {
			if !ok(a[0]) {
				return 0, domainErr()
			}
			return f(a[0]), nil
		}}
}

func domainErr() error { return toolerr.New(toolerr.KindValidation, "math domain error") }

func positive(x float64) bool    { return x > 0 }
func inUnitRange(x float64) bool { return x >= -1 && x <= 1 }

func init() {
	register(unary("abs", math.Abs))
	register(function{name: "round", minArgs: 1, maxArgs: 2, apply: applyRound})
	register(function{name: "min", minArgs: 2, maxArgs: -1, apply: applyMin})
	register(function{name: "max", minArgs: 2, maxArgs: -1, apply: applyMax})
	register(function{name: "sum", minArgs: 1, maxArgs: -1, apply: applySum})
	register(function{name: "pow", minArgs: 2, maxArgs: 2, apply: applyPow})
	register(unaryDomain("sqrt", func(x float64) bool { return x >= 0 }, math.Sqrt))
	register(unary("sin", math.Sin))
	register(unary("cos", math.Cos))
	register(unary("tan", math.Tan))
	register(unaryDomain("asin", inUnitRange, math.Asin))
	register(unaryDomain("acos", inUnitRange, math.Acos))
	register(unary("atan", math.Atan))
	register(function{name: "atan2", minArgs: 2, maxArgs: 2,
		apply: func(a []float64) (float64, error) { return math.Atan2(a[0], a[1]), nil }})
	register(unary("sinh", math.Sinh))
	register(unary("cosh", math.Cosh))
	register(unary("tanh", math.Tanh))
	register(unary("exp", math.Exp))
	register(function{name: "log", minArgs: 1, maxArgs: 2, apply: applyLog})
	register(unaryDomain("log10", positive, math.Log10))
	register(unaryDomain("log2", positive, math.Log2))
	register(unary("floor", math.Floor))
	register(unary("ceil", math.Ceil))
	register(unary("trunc", math.Trunc))
	register(function{name: "factorial", minArgs: 1, maxArgs: 1, apply: applyFactorial})
	register(function{name: "gcd", minArgs: 2, maxArgs: 2, apply: applyGCD})
	register(unary("radians", func(x float64) float64 { return x * math.Pi / 180 }))
	register(unary("degrees", func(x float64) float64 { return x * 180 / math.Pi }))
	register(function{name: "hypot", minArgs: 2, maxArgs: 2,
		apply: func(a []float64) (float64, error) { return math.Hypot(a[0], a[1]), nil }})
}

// applyRound implements Python round: banker's rounding, optional ndigits.
func applyRound(args []float64) (float64, error) {
	if len(args) == 1 {
		return math.RoundToEven(args[0]), nil
	}
	nd := args[1]
	if nd != math.Trunc(nd) {
		return 0, toolerr.New(toolerr.KindValidation, "round() ndigits must be an integer")
	}
	// Beyond float64 decimal range the shift would overflow; the value is
	// already exact at 308 digits either way.
	if nd > 308 {
		return args[0], nil
	}
	if nd < -308 {
		return 0, nil
	}
	shift := math.Pow(10, nd)
	return math.RoundToEven(args[0]*shift) / shift, nil
}

func applyMin(args []float64) (float64, error) {
	m := args[0]
	for _, a := range args[1:] {
		if a < m {
			m = a
		}
	}
	return m, nil
}

func applyMax(args []float64) (float64, error) {
	m := args[0]
	for _, a := range args[1:] {
		if a > m {
			m = a
		}
	}
	return m, nil
}

func applySum(args []float64) (float64, error) {
	var s float64
	for _, a := range args {
		s += a
	}
	return s, nil
}

// applyPow enforces the same exponent cap as the ** operator.
func applyPow(args []float64) (float64, error) {
	if math.Abs(args[1]) > maxExponent {
		return 0, toolerr.New(toolerr.KindValidation, "Exponent too large (max 1000)")
	}
	return math.Pow(args[0], args[1]), nil
}

func applyLog(args []float64) (float64, error) {
	if args[0] <= 0 {
		return 0, domainErr()
	}
	if len(args) == 1 {
		return math.Log(args[0]), nil
	}
	base := args[1]
	if base <= 0 {
		return 0, domainErr()
	}
	lb := math.Log(base)
	if lb == 0 {
		return 0, toolerr.New(toolerr.KindMath, "division by zero")
	}
	return math.Log(args[0]) / lb, nil
}

func applyFactorial(args []float64) (float64, error) {
	x := args[0]
	if x != math.Trunc(x) {
		return 0, toolerr.New(toolerr.KindValidation, "factorial() only accepts integral values")
	}
	if x < 0 {
		return 0, toolerr.New(toolerr.KindValidation, "factorial() not defined for negative values")
	}
	result := 1.0
	for i := 2.0; i <= x; i++ {
		result *= i
		if math.IsInf(result, 0) {
			break
		}
	}
	return result, nil
}

func applyGCD(args []float64) (float64, error) {
	a, b := args[0], args[1]
	if a != math.Trunc(a) || b != math.Trunc(b) ||
		math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0, toolerr.New(toolerr.KindValidation, "gcd() requires integer arguments")
	}
	x, y := int64(math.Abs(a)), int64(math.Abs(b))
	for y != 0 {
		x, y = y, x%y
	}
	return float64(x), nil
}
