// Package builtin implements garnish's fixed set of callable builtins:
// the only way a garnish expression produces a Node, Rule, or RawHTML
// value. Builtins never invoke user expressions themselves — they only
// read already-evaluated argument values — so this package depends on the
// value package but not on vm, which depends on it instead.
package builtin

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/garnish-lang/web-garnish/internal/lang/value"
)

// Heap is the narrow view of interpreter state a builtin needs: enough to
// dereference list elements and allocate fresh heap entries of its own.
// *vm.Interpreter implements this.
type Heap interface {
	Get(idx int) value.Value
	Alloc(v value.Value) int
}

// Func is the signature every builtin implements.
type Func func(h Heap, args []value.Value) (value.Value, error)

// Table is the fixed builtin dispatch table. Garnish has no user-defined
// functions, so this set is closed.
var Table = map[string]Func{
	"node":     builtinNode,
	"text":     builtinText,
	"rule":     builtinRule,
	"decl":     builtinDecl,
	"list":     builtinList,
	"markdown": builtinMarkdown,
	"and":      builtinAnd,
	"or":       builtinOr,
	"not":      builtinNot,
}

func builtinNode(h Heap, args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, fmt.Errorf("requires 3 arguments (tag, attrs, children), got %d", len(args))
	}
	tag, ok := args[0].AsString()
	if !ok {
		return value.Value{}, fmt.Errorf("tag must be a string or symbol, got %s", args[0].Kind)
	}
	attrs, err := decodePairs(h, args[1])
	if err != nil {
		return value.Value{}, fmt.Errorf("attrs: %w", err)
	}
	children, err := decodeChildren(args[2])
	if err != nil {
		return value.Value{}, fmt.Errorf("children: %w", err)
	}
	return value.NewNode(value.NodeData{Tag: tag, Attrs: attrs, Children: children}), nil
}

func builtinText(_ Heap, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("requires 1 argument, got %d", len(args))
	}
	s, ok := args[0].AsString()
	if !ok {
		return value.Value{}, fmt.Errorf("argument must be a string, got %s", args[0].Kind)
	}
	return value.NewNode(value.NodeData{Text: s}), nil
}

func builtinRule(h Heap, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, fmt.Errorf("requires 2 arguments (selector, declarations), got %d", len(args))
	}
	selector, ok := args[0].AsString()
	if !ok {
		return value.Value{}, fmt.Errorf("selector must be a string, got %s", args[0].Kind)
	}
	decls, err := decodePairs(h, args[1])
	if err != nil {
		return value.Value{}, fmt.Errorf("declarations: %w", err)
	}
	return value.NewRule(value.RuleData{Selector: selector, Declarations: decls}), nil
}

// builtinDecl is sugar for a (property, value) pair, the shape rule() and
// node()'s attrs argument expect each list element to be.
func builtinDecl(h Heap, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, fmt.Errorf("requires 2 arguments (property, value), got %d", len(args))
	}
	elems := make([]int, 2)
	elems[0] = h.Alloc(args[0])
	elems[1] = h.Alloc(args[1])
	return value.NewList(elems), nil
}

// builtinList is the callable-function spelling of a (...)/[...] literal,
// useful when a list needs to be built from already-named values.
func builtinList(h Heap, args []value.Value) (value.Value, error) {
	elems := make([]int, len(args))
	for i, a := range args {
		elems[i] = h.Alloc(a)
	}
	return value.NewList(elems), nil
}

func builtinMarkdown(_ Heap, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("requires 1 argument, got %d", len(args))
	}
	src, ok := args[0].AsString()
	if !ok {
		return value.Value{}, fmt.Errorf("argument must be a string, got %s", args[0].Kind)
	}
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return value.Value{}, fmt.Errorf("rendering markdown: %w", err)
	}
	return value.NewRawHTML(buf.String()), nil
}

func builtinAnd(_ Heap, args []value.Value) (value.Value, error) {
	for _, a := range args {
		if !a.Truthy() {
			return value.NewBool(false), nil
		}
	}
	return value.NewBool(true), nil
}

func builtinOr(_ Heap, args []value.Value) (value.Value, error) {
	for _, a := range args {
		if a.Truthy() {
			return value.NewBool(true), nil
		}
	}
	return value.NewBool(false), nil
}

func builtinNot(_ Heap, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("requires 1 argument, got %d", len(args))
	}
	return value.NewBool(!args[0].Truthy()), nil
}

// decodePairs reads a List of 2-element Lists (e.g. attrs or declarations)
// into ordered string pairs. A Nil value decodes to no pairs.
func decodePairs(h Heap, v value.Value) ([][2]string, error) {
	if v.Kind == value.Nil {
		return nil, nil
	}
	items, ok := v.AsList()
	if !ok {
		return nil, fmt.Errorf("must be a list or nil, got %s", v.Kind)
	}
	out := make([][2]string, 0, len(items))
	for _, idx := range items {
		pair := h.Get(idx)
		elems, ok := pair.AsList()
		if !ok || len(elems) != 2 {
			return nil, fmt.Errorf("each entry must be a 2-element list, got %s", pair.Kind)
		}
		key, ok := h.Get(elems[0]).AsString()
		if !ok {
			return nil, fmt.Errorf("entry key must be a string")
		}
		val, ok := h.Get(elems[1]).AsString()
		if !ok {
			return nil, fmt.Errorf("entry value must be a string")
		}
		out = append(out, [2]string{key, val})
	}
	return out, nil
}

// decodeChildren reads a List of heap indices (left as indices; the
// serializer dereferences them through the same heap). A Nil value
// decodes to no children.
func decodeChildren(v value.Value) ([]int, error) {
	if v.Kind == value.Nil {
		return nil, nil
	}
	items, ok := v.AsList()
	if !ok {
		return nil, fmt.Errorf("must be a list or nil, got %s", v.Kind)
	}
	return items, nil
}
