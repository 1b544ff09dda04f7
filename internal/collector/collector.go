// Package collector partitions an already-lexed garnish token stream into
// blocks: the root expression's tokens, and each @Method/@Def annotation's
// argument tokens, stripped of their label. It is a small, single-pass
// scanner over a fixed, locally-owned token set, matching how the lexer
// feeds the parser: token slice in, token slice consumed by a cursor.
package collector

import "github.com/garnish-lang/web-garnish/internal/lang/token"

// TokenBlock is one partitioned span of tokens: either a root-source block
// (AnnotationText == "") or an annotation's argument tokens with the label
// stripped.
type TokenBlock struct {
	AnnotationText string
	Tokens         []token.Token
}

// Collect scans tokens for @Method/@Def annotations, each terminated by a
// SEMI token, and returns the root blocks (tokens between annotations,
// with SEMI tokens filtered out since the root is a single expression with
// no statement separators) interleaved with the annotation blocks in
// source order.
func Collect(tokens []token.Token) []TokenBlock {
	var blocks []TokenBlock
	var rootBuf []token.Token

	flushRoot := func() {
		if len(rootBuf) == 0 {
			return
		}
		blocks = append(blocks, TokenBlock{Tokens: rootBuf})
		rootBuf = nil
	}

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		if tok.Type == token.EOF {
			break
		}
		if tok.Type.IsAnnotation() {
			flushRoot()
			label := tok.Type.Label()
			i++
			var argTokens []token.Token
			for i < len(tokens) && tokens[i].Type != token.SEMI && tokens[i].Type != token.EOF {
				argTokens = append(argTokens, tokens[i])
				i++
			}
			if i < len(tokens) && tokens[i].Type == token.SEMI {
				i++ // consume the terminator
			}
			blocks = append(blocks, TokenBlock{AnnotationText: label, Tokens: argTokens})
			continue
		}
		if tok.Type == token.SEMI {
			i++
			continue
		}
		rootBuf = append(rootBuf, tok)
		i++
	}
	flushRoot()
	return blocks
}

// Roots returns the concatenation of every root block's tokens, in order,
// followed by an EOF token — a well-formed token stream for the parser.
func Roots(blocks []TokenBlock) []token.Token {
	var out []token.Token
	for _, b := range blocks {
		if b.AnnotationText == "" {
			out = append(out, b.Tokens...)
		}
	}
	out = append(out, token.Token{Type: token.EOF})
	return out
}

// ByLabel splits the annotation blocks (AnnotationText != "") out of blocks
// by their label.
func ByLabel(blocks []TokenBlock, label string) []TokenBlock {
	var out []TokenBlock
	for _, b := range blocks {
		if b.AnnotationText == label {
			out = append(out, b)
		}
	}
	return out
}
