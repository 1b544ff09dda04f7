// Package serialize implements the two deserialize contracts the
// dispatcher needs: walking a terminal Node value into rendered HTML via
// golang.org/x/net/html (for correct escaping), and walking a terminal
// Rule value into CSS text.
package serialize

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"

	"github.com/garnish-lang/web-garnish/internal/lang/value"
)

// Heap is the narrow heap-read view deserialization needs to walk a
// Node's Children (heap indices). *vm.Interpreter implements this.
type Heap interface {
	Get(idx int) value.Value
}

// DeserializeHTML walks v (expected to be a Node, CharList, Symbol, or
// RawHTML) into an x/net/html node tree and renders it, guaranteeing
// correct escaping of text content while leaving RawHTML fragments (e.g.
// markdown() output) untouched.
func DeserializeHTML(v value.Value, h Heap) (string, error) {
	node, err := buildHTMLNode(v, h)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return buf.String(), nil
}

func buildHTMLNode(v value.Value, h Heap) (*html.Node, error) {
	switch v.Kind {
	case value.Node:
		data, _ := v.AsNode()
		if data.Tag == "" {
			return &html.Node{Type: html.TextNode, Data: data.Text}, nil
		}
		n := &html.Node{Type: html.ElementNode, Data: data.Tag}
		for _, kv := range data.Attrs {
			n.Attr = append(n.Attr, html.Attribute{Key: kv[0], Val: kv[1]})
		}
		for _, childIdx := range data.Children {
			child, err := buildHTMLNode(h.Get(childIdx), h)
			if err != nil {
				return nil, err
			}
			n.AppendChild(child)
		}
		return n, nil

	case value.CharList, value.Symbol:
		s, _ := v.AsString()
		return &html.Node{Type: html.TextNode, Data: s}, nil

	case value.RawHTML:
		s, _ := v.AsRawHTML()
		return &html.Node{Type: html.RawNode, Data: s}, nil

	default:
		return nil, fmt.Errorf("serialize: cannot render value of kind %s as html", v.Kind)
	}
}
