package eval

import (
	"fmt"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/toolerr"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp      // + - * / // % **
	tokCompare // < <= > >= == !=
	tokLParen
	tokRParen
	tokComma
	tokAssign // bare '=', only ever valid as part of '=='
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset in the source expression
}

func syntaxErrf(format string, args ...any) error {
	return toolerr.Newf(toolerr.KindValidation, "Invalid expression syntax: %s", fmt.Sprintf(format, args...))
}

// lex splits an expression into tokens. Any character outside the grammar
// (quotes, brackets, '@', ...) fails here, which is the first line of
// defense against non-arithmetic input.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9', c == '.' && i+1 < len(src) && isDigit(src[i+1]):
			start := i
			i = scanNumber(src, i)
			if i < 0 {
				return nil, syntaxErrf("malformed number at position %d", start+1)
			}
			toks = append(toks, token{tokNumber, src[start:i], start})
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, src[start:i], start})
		case c == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				toks = append(toks, token{tokOp, "**", i})
				i += 2
			} else {
				toks = append(toks, token{tokOp, "*", i})
				i++
			}
		case c == '/':
			if i+1 < len(src) && src[i+1] == '/' {
				toks = append(toks, token{tokOp, "//", i})
				i += 2
			} else {
				toks = append(toks, token{tokOp, "/", i})
				i++
			}
		case c == '+' || c == '-' || c == '%':
			toks = append(toks, token{tokOp, string(c), i})
			i++
		case c == '<' || c == '>':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokCompare, string(c) + "=", i})
				i += 2
			} else {
				toks = append(toks, token{tokCompare, string(c), i})
				i++
			}
		case c == '=':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokCompare, "==", i})
				i += 2
			} else {
				toks = append(toks, token{tokAssign, "=", i})
				i++
			}
		case c == '!':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokCompare, "!=", i})
				i += 2
			} else {
				return nil, syntaxErrf("unexpected character '!' at position %d", i+1)
			}
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		default:
			return nil, syntaxErrf("unexpected character %q at position %d", string(c), i+1)
		}
	}
	toks = append(toks, token{tokEOF, "", len(src)})
	return toks, nil
}

// scanNumber consumes a numeric literal starting at i and returns the end
// offset, or -1 when the literal is malformed (e.g. "1e" with no exponent).
func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		i++
		if i < len(src) && (src[i] == '+' || src[i] == '-') {
			i++
		}
		if i >= len(src) || !isDigit(src[i]) {
			return -1
		}
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
