package eval

import (
	"strconv"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

// Grammar (Python expression subset, precedence low to high):
//
//	comparison : additive ( ("<"|"<="|">"|">="|"=="|"!=") additive )*
//	additive   : term ( ("+"|"-") term )*
//	term       : unary ( ("*"|"/"|"//"|"%") unary )*
//	unary      : ("+"|"-") unary | power
//	power      : primary ( "**" unary )?
//	primary    : NUMBER | IDENT | IDENT "(" args ")" | "(" comparison ")"
//
// "**" binds tighter than unary minus on its left but admits a signed
// exponent on its right, so -2**2 is -4 and 2**-1 is 0.5, and it is
// right-associative, so 2**3**2 is 512.
type parser struct {
	toks []token
	pos  int
}

func parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxErrf("unexpected %q at position %d", t.text, t.pos+1)
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) comparison() (Node, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokCompare {
		return left, nil
	}
	chain := &CompareChain{First: left}
	for p.peek().kind == tokCompare {
		op := p.next().text
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		chain.Ops = append(chain.Ops, op)
		chain.Rest = append(chain.Rest, right)
	}
	return chain, nil
}

func (p *parser) additive() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: t.text, Left: left, Right: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/" && t.text != "//" && t.text != "%") {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: t.text, Left: left, Right: right}
	}
}

func (p *parser) unary() (Node, error) {
	if t := p.peek(); t.kind == tokOp && (t.text == "+" || t.text == "-") {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: t.text, Operand: operand}, nil
	}
	return p.power()
}

func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOp && t.text == "**" {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: "**", Left: base, Right: exp}, nil
	}
	return base, nil
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, syntaxErrf("invalid number %q at position %d", t.text, t.pos+1)
		}
		return &NumericLiteral{Value: f}, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			p.next()
			args, err := p.args()
			if err != nil {
				return nil, err
			}
			return &Call{Func: t.text, Args: args}, nil
		}
		return &NamedConstant{Name: t.text}, nil
	case tokLParen:
		inner, err := p.comparison()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.unexpected("expected ')'")
		}
		p.next()
		return inner, nil
	case tokEOF:
		return nil, syntaxErrf("unexpected end of expression")
	default:
		return nil, syntaxErrf("unexpected %q at position %d", t.text, t.pos+1)
	}
}

// args parses a call argument list, consuming the closing ')'.
func (p *parser) args() ([]Node, error) {
	var args []Node
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		if p.peek().kind == tokIdent && p.peekAt(1).kind == tokAssign {
			return nil, toolerr.New(toolerr.KindValidation, "Keyword arguments not supported in math expressions")
		}
		a, err := p.comparison()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		switch p.peek().kind {
		case tokComma:
			p.next()
		case tokRParen:
			p.next()
			return args, nil
		default:
			return nil, p.unexpected("expected ',' or ')'")
		}
	}
}

func (p *parser) unexpected(want string) error {
	t := p.peek()
	if t.kind == tokEOF {
		return syntaxErrf("%s, got end of expression", want)
	}
	return syntaxErrf("%s, got %q at position %d", want, t.text, t.pos+1)
}
