// Package value defines the garnish runtime value union: a small Kind tag
// plus an untyped Data payload, with typed constructors and accessors
// rather than a Go interface per kind — this keeps values cheap to store
// on the interpreter's heap as a flat slice.
package value

import "fmt"

type Kind int

const (
	Nil Kind = iota
	Bool
	Number
	CharList  // string
	Symbol    // string, but distinct from CharList for annotation-name decoding
	List      // []int, heap indices of elements
	Expression // int, jump-table index
	Node      // HTML element or text leaf
	Rule      // CSS rule
	RawHTML   // pre-rendered HTML fragment (e.g. from markdown()), embedded unescaped
)

func (k Kind) String() string {
	switch k {
	case Nil:
		return "Nil"
	case Bool:
		return "Bool"
	case Number:
		return "Number"
	case CharList:
		return "CharList"
	case Symbol:
		return "Symbol"
	case List:
		return "List"
	case Expression:
		return "Expression"
	case Node:
		return "Node"
	case Rule:
		return "Rule"
	case RawHTML:
		return "RawHTML"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// NodeData is the payload of a Node value: either a text leaf (Tag == "")
// carrying Text, or an element with a tag, attribute pairs, and children
// (each a heap index of another Node/CharList/RawHTML value).
type NodeData struct {
	Tag      string
	Text     string
	Attrs    [][2]string
	Children []int
}

// RuleData is the payload of a Rule value: a CSS selector and its
// declarations (property, value pairs), in source order.
type RuleData struct {
	Selector     string
	Declarations [][2]string
}

// Value is a single garnish runtime value. Data holds:
//   Bool       -> bool
//   Number     -> float64
//   CharList   -> string
//   Symbol     -> string
//   List       -> []int (heap indices)
//   Expression -> int (jump-table index)
//   Node       -> NodeData
//   Rule       -> RuleData
//   RawHTML    -> string
type Value struct {
	Kind Kind
	Data any
}

func NewNil() Value                 { return Value{Kind: Nil} }
func NewBool(b bool) Value          { return Value{Kind: Bool, Data: b} }
func NewNumber(n float64) Value     { return Value{Kind: Number, Data: n} }
func NewCharList(s string) Value    { return Value{Kind: CharList, Data: s} }
func NewSymbol(s string) Value      { return Value{Kind: Symbol, Data: s} }
func NewList(elems []int) Value     { return Value{Kind: List, Data: elems} }
func NewExpression(idx int) Value   { return Value{Kind: Expression, Data: idx} }
func NewNode(n NodeData) Value      { return Value{Kind: Node, Data: n} }
func NewRule(r RuleData) Value      { return Value{Kind: Rule, Data: r} }
func NewRawHTML(s string) Value     { return Value{Kind: RawHTML, Data: s} }

func (v Value) AsBool() (bool, bool) {
	b, ok := v.Data.(bool)
	return b, ok && v.Kind == Bool
}

func (v Value) AsNumber() (float64, bool) {
	n, ok := v.Data.(float64)
	return n, ok && v.Kind == Number
}

func (v Value) AsString() (string, bool) {
	if v.Kind != CharList && v.Kind != Symbol {
		return "", false
	}
	s, ok := v.Data.(string)
	return s, ok
}

func (v Value) AsList() ([]int, bool) {
	l, ok := v.Data.([]int)
	return l, ok && v.Kind == List
}

func (v Value) AsExpression() (int, bool) {
	idx, ok := v.Data.(int)
	return idx, ok && v.Kind == Expression
}

func (v Value) AsNode() (NodeData, bool) {
	n, ok := v.Data.(NodeData)
	return n, ok && v.Kind == Node
}

func (v Value) AsRule() (RuleData, bool) {
	r, ok := v.Data.(RuleData)
	return r, ok && v.Kind == Rule
}

func (v Value) AsRawHTML() (string, bool) {
	s, ok := v.Data.(string)
	return s, ok && v.Kind == RawHTML
}

// Truthy applies garnish's truthiness rule: nil and false are falsy,
// everything else (including 0 and "") is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Nil:
		return false
	case Bool:
		b, _ := v.AsBool()
		return b
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.Kind {
	case Nil:
		return "nil"
	case Bool:
		b, _ := v.AsBool()
		return fmt.Sprintf("%t", b)
	case Number:
		n, _ := v.AsNumber()
		return fmt.Sprintf("%g", n)
	case CharList:
		s, _ := v.AsString()
		return fmt.Sprintf("%q", s)
	case Symbol:
		s, _ := v.AsString()
		return ":" + s
	case List:
		return "List"
	case Expression:
		idx, _ := v.AsExpression()
		return fmt.Sprintf("Expression(%d)", idx)
	case Node:
		n, _ := v.AsNode()
		if n.Tag == "" {
			return fmt.Sprintf("Node.text(%q)", n.Text)
		}
		return fmt.Sprintf("Node.element(%q)", n.Tag)
	case Rule:
		r, _ := v.AsRule()
		return fmt.Sprintf("Rule(%q)", r.Selector)
	case RawHTML:
		return "RawHTML"
	default:
		return v.Kind.String()
	}
}
