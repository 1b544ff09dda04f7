package garnish

import (
	"fmt"

	"github.com/garnish-lang/web-garnish/internal/lang/builder"
	"github.com/garnish-lang/web-garnish/internal/lang/parser"
	"github.com/garnish-lang/web-garnish/internal/lang/token"
	"github.com/garnish-lang/web-garnish/internal/lang/vm"
)

// AnnotationResult is the decoded (name, jump-table index) pair an
// @Method/@Def annotation's expression evaluates to, plus the parse tree
// the decoded expression was compiled from (kept for the dump emitter's
// per-unit build metadata).
type AnnotationResult struct {
	Name      string
	JumpIdx   int
	ParseTree parser.Result
}

// EvaluateAnnotation implements the "execute to obtain metadata" protocol:
// parse the annotation's argument tokens, compile them into ip, run them
// in ip with no symbol resolution, and decode the
// resulting value as a 2-element list (name, Expression).
func EvaluateAnnotation(ip *vm.Interpreter, tokens []token.Token) (AnnotationResult, error) {
	result := parser.Parse(tokens)
	if len(result.Errors) > 0 {
		return AnnotationResult{}, fmt.Errorf("%w: %v", ErrEmptyAnnotation, result.Errors[0])
	}
	if len(result.Nodes) == 0 {
		return AnnotationResult{}, ErrEmptyAnnotation
	}

	jumpIdx, err := builder.Compile(ip, result.Nodes[0])
	if err != nil {
		return AnnotationResult{}, fmt.Errorf("building annotation bytecode: %w", err)
	}
	if jumpIdx < 0 || jumpIdx >= len(ip.Program.JumpTable) {
		return AnnotationResult{}, ErrMissingJumpPoint
	}
	start := ip.Program.JumpTable[jumpIdx]

	if err := ip.Seed(start); err != nil {
		return AnnotationResult{}, fmt.Errorf("%w: %v", ErrExecStep, err)
	}
	if err := ip.Run(vm.NoopResolver{}); err != nil {
		return AnnotationResult{}, fmt.Errorf("%w: %v", ErrExecStep, err)
	}

	current, ok := ip.CurrentValue()
	if !ok {
		return AnnotationResult{}, ErrNoValue
	}
	elems, ok := current.AsList()
	if !ok || len(elems) != 2 {
		return AnnotationResult{}, fmt.Errorf("%w: expected a 2-element list, got %s", ErrBadShape, current.Kind)
	}

	nameVal := ip.Get(elems[0])
	name, ok := nameVal.AsString()
	if !ok {
		return AnnotationResult{}, fmt.Errorf("%w: item 0 must be Symbol or CharList, got %s", ErrBadShape, nameVal.Kind)
	}

	exprVal := ip.Get(elems[1])
	exprIdx, ok := exprVal.AsExpression()
	if !ok {
		return AnnotationResult{}, fmt.Errorf("%w: item 1 must be Expression, got %s", ErrBadShape, exprVal.Kind)
	}

	return AnnotationResult{Name: name, JumpIdx: exprIdx, ParseTree: result}, nil
}
