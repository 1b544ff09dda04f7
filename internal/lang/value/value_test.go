package value

import "testing"

func TestTruthyRules(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", NewNil(), false},
		{"false", NewBool(false), false},
		{"true", NewBool(true), true},
		{"zero number", NewNumber(0), true},
		{"empty string", NewCharList(""), true},
		{"symbol", NewSymbol("x"), true},
	}
	for _, tt := range tests {
		if got := tt.v.Truthy(); got != tt.want {
			t.Errorf("%s.Truthy() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAsAccessorsRejectWrongKind(t *testing.T) {
	n := NewNumber(5)
	if _, ok := n.AsString(); ok {
		t.Errorf("AsString() on a Number should fail")
	}
	if _, ok := n.AsBool(); ok {
		t.Errorf("AsBool() on a Number should fail")
	}
	s := NewCharList("hi")
	if _, ok := s.AsNumber(); ok {
		t.Errorf("AsNumber() on a CharList should fail")
	}
}

func TestAsStringAcceptsCharListAndSymbol(t *testing.T) {
	for _, v := range []Value{NewCharList("a"), NewSymbol("a")} {
		s, ok := v.AsString()
		if !ok || s != "a" {
			t.Errorf("AsString() on %v = (%q, %v), want (a, true)", v.Kind, s, ok)
		}
	}
}

func TestNewListRoundTrips(t *testing.T) {
	l := NewList([]int{1, 2, 3})
	elems, ok := l.AsList()
	if !ok || len(elems) != 3 {
		t.Fatalf("AsList() = %v, %v", elems, ok)
	}
}

func TestNewNodeTextLeafVsElement(t *testing.T) {
	leaf := NewNode(NodeData{Text: "hi"})
	n, _ := leaf.AsNode()
	if n.Tag != "" || n.Text != "hi" {
		t.Errorf("text leaf = %+v", n)
	}

	el := NewNode(NodeData{Tag: "div"})
	n, _ = el.AsNode()
	if n.Tag != "div" {
		t.Errorf("element = %+v", n)
	}
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	if Bool.String() != "Bool" {
		t.Errorf("Bool.String() = %q", Bool.String())
	}
	unknown := Kind(999)
	if unknown.String() == "" {
		t.Errorf("unknown kind should still produce a non-empty string")
	}
}

func TestValueStringDoesNotPanicForEveryKind(t *testing.T) {
	values := []Value{
		NewNil(), NewBool(true), NewNumber(1), NewCharList("a"), NewSymbol("a"),
		NewList(nil), NewExpression(0), NewNode(NodeData{Tag: "div"}),
		NewRule(RuleData{Selector: "a"}), NewRawHTML("<b>"),
	}
	for _, v := range values {
		_ = v.String()
	}
}
