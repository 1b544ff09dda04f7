// Package ast defines the (deliberately small) abstract syntax tree for
// garnish expressions. Garnish has no statements, loops, or function
// definitions — every file body and every annotation argument is a single
// expression, so the AST has correspondingly few node kinds.
package ast

// Node is the interface every AST node implements: an empty node() method
// that exists purely to seal the type set.
type Node interface {
	node()
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

// StringLit is a double-quoted string literal.
type StringLit struct {
	Value string
}

// BoolLit is true/false.
type BoolLit struct {
	Value bool
}

// NilLit is the nil literal.
type NilLit struct{}

// SymbolRef is a bare identifier. Quoted (Quoted == true, written "&name")
// it compiles to a symbol lookup only (the resulting Expression value is
// left on the stack unexecuted); unquoted it compiles to a symbol lookup
// immediately followed by an invocation of the resolved expression.
type SymbolRef struct {
	Name   string
	Quoted bool
}

// ListLit is a list literal, written with either "(" ")" or "[" "]" —
// both spellings are accepted and produce the same node.
type ListLit struct {
	Elements []Node
}

// BlockLit ("{ expr }") compiles its inner expression as a standalone,
// separately addressable unit in the shared jump table and evaluates, at
// the point the block appears, to an Expression value referencing that
// unit — without executing it. This is how @Method/@Def annotations and
// route bodies pass an unevaluated handler expression around as a value.
type BlockLit struct {
	Body Node
}

// Call is a builtin function call: name(args...). Garnish has no
// user-defined functions — callable names are a fixed builtin table
// (node, text, rule, decl, list, markdown, and, or, not), looked up by
// name when the VM executes the call.
type Call struct {
	Name string
	Args []Node
}

func (*NumberLit) node() {}
func (*StringLit) node() {}
func (*BoolLit) node()   {}
func (*NilLit) node()    {}
func (*SymbolRef) node() {}
func (*ListLit) node()   {}
func (*BlockLit) node()  {}
func (*Call) node()      {}
