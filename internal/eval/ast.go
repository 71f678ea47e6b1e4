package eval

// Node is a parsed expression tree node. The parser produces exactly the
// implementations below and nothing else; there is no production for
// strings, attribute access, subscripts or any other construct, which is
// what makes the evaluator safe to point at untrusted input.
type Node interface {
	node()
}

// NumericLiteral is a number literal.
type NumericLiteral struct {
	Value float64
}

// NamedConstant is a bare identifier (pi, e, tau, inf).
type NamedConstant struct {
	Name string
}

// BinaryOp applies an infix operator: + - * / // % **.
type BinaryOp struct {
	Op    string
	Left  Node
	Right Node
}

// UnaryOp applies a prefix sign: + -.
type UnaryOp struct {
	Op      string
	Operand Node
}

// Call invokes a whitelisted function by name.
type Call struct {
	Func string
	Args []Node
}

// CompareChain is a chained comparison such as "1 < x <= 10". It holds the
// first operand plus parallel slices of operators and remaining operands.
type CompareChain struct {
	First Node
	Ops   []string
	Rest  []Node
}

func (*NumericLiteral) node() {}
func (*NamedConstant) node()  {}
func (*BinaryOp) node()       {}
func (*UnaryOp) node()        {}
func (*Call) node()           {}
func (*CompareChain) node()   {}
