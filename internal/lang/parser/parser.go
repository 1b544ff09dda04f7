// Package parser implements a small recursive-descent parser for garnish
// expressions: a token cursor with current()/advance() helpers and
// accumulated, non-fatal parse errors rather than panics.
package parser

import (
	"fmt"
	"strconv"

	"github.com/garnish-lang/web-garnish/internal/lang/ast"
	"github.com/garnish-lang/web-garnish/internal/lang/token"
)

// Result is the parser's output: the parsed expression nodes (garnish
// allows a single expression per parse, so Nodes has at most one element)
// plus any errors encountered.
type Result struct {
	Nodes  []ast.Node
	Errors []error
}

type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses tokens as a single garnish expression. An empty or
// all-whitespace token stream (just EOF) yields a Result with no Nodes,
// matching the "empty parse" case the compiler and annotation evaluator
// both check for.
func Parse(tokens []token.Token) Result {
	p := New(tokens)
	var res Result

	if p.current().Type == token.EOF {
		return res
	}

	expr, err := p.parseExpression()
	if err != nil {
		res.Errors = append(res.Errors, err)
		return res
	}
	res.Nodes = append(res.Nodes, expr)

	if p.current().Type != token.EOF {
		res.Errors = append(res.Errors, p.errorf("unexpected trailing token %s", p.current()))
	}
	return res
}

func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if p.current().Type != t {
		return token.Token{}, p.errorf("expected %s, got %s", t, p.current())
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("parse error at %d:%d: "+format, append([]any{p.current().Line, p.current().Column}, args...)...)
}

// parseExpression is the entry point for operator precedence: or > and > not > primary.
func (p *Parser) parseExpression() (ast.Node, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Type == token.OR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Call{Name: "or", Args: []ast.Node{left, right}}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.current().Type == token.AND {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.Call{Name: "and", Args: []ast.Node{left, right}}
	}
	return left, nil
}

func (p *Parser) parseNot() (ast.Node, error) {
	if p.current().Type == token.NOT {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Call{Name: "not", Args: []ast.Node{operand}}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	tok := p.current()
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		n, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", tok.Value)
		}
		return &ast.NumberLit{Value: n}, nil

	case token.STRING:
		p.advance()
		return &ast.StringLit{Value: tok.Value}, nil

	case token.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true}, nil

	case token.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false}, nil

	case token.NIL:
		p.advance()
		return &ast.NilLit{}, nil

	case token.AMP:
		p.advance()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		return &ast.SymbolRef{Name: name.Value, Quoted: true}, nil

	case token.LBRACE:
		p.advance()
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
		return &ast.BlockLit{Body: body}, nil

	case token.LPAREN:
		return p.parseListLit(token.LPAREN, token.RPAREN)

	case token.LBRACKET:
		return p.parseListLit(token.LBRACKET, token.RBRACKET)

	case token.IDENT:
		p.advance()
		if p.current().Type == token.LPAREN {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ast.Call{Name: tok.Value, Args: args}, nil
		}
		return &ast.SymbolRef{Name: tok.Value, Quoted: false}, nil

	default:
		return nil, p.errorf("unexpected token %s", tok)
	}
}

// parseListLit parses a parenthesized or bracketed comma-separated element
// list; "()" and "[]" are interchangeable spellings of the same list
// literal.
func (p *Parser) parseListLit(open, close token.Type) (ast.Node, error) {
	if _, err := p.expect(open); err != nil {
		return nil, err
	}
	var elems []ast.Node
	if p.current().Type != close {
		for {
			elem, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
			if p.current().Type != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(close); err != nil {
		return nil, err
	}
	return &ast.ListLit{Elements: elems}, nil
}

func (p *Parser) parseArgs() ([]ast.Node, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Node
	if p.current().Type != token.RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.current().Type != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}
