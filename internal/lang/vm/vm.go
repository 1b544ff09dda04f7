// Package vm implements the register-based bytecode machine that executes
// compiled garnish expressions.
//
// The instruction semantics are intentionally minimal and treated as an
// interpreter-internal detail rather than a general-purpose language
// runtime: push a constant, look up a symbol (deferring to a
// host-supplied SymbolResolver), invoke a previously-looked-up
// expression, build a list, materialize a literal expression reference,
// call one of a fixed set of builtins, or end. That is exactly enough to
// produce the Html/Css structured values the rest of the system
// deserializes.
//
// The state is split into two halves, a "session over program" design:
// Program (instructions, jump table, symbol table) is built once at
// compile time and shared by pointer across every per-request clone;
// Session (heap, register stack, call stack, cursor, current value) is
// deep-copied per clone so that mutating one request's execution can
// never affect another's, or the shared base interpreter.
package vm

import (
	"fmt"

	"github.com/garnish-lang/web-garnish/internal/lang/builtin"
	"github.com/garnish-lang/web-garnish/internal/lang/value"
)

type OpCode int

const (
	OpPushConst   OpCode = iota // push Heap[Int]
	OpPushSymbol                // resolve symbol Int (a symbol id) via the host resolver
	OpInvoke                    // pop an Expression value, call into its jump-table entry
	OpMakeList                  // pop Int values, push a List
	OpMakeExpr                  // push a literal Expression(Int) value (jump-table index)
	OpCallBuiltin                // pop Int values, call builtin Str, push its result
	OpEnd                        // return to caller, or halt if the call stack is empty
)

func (op OpCode) String() string {
	switch op {
	case OpPushConst:
		return "PushConst"
	case OpPushSymbol:
		return "PushSymbol"
	case OpInvoke:
		return "Invoke"
	case OpMakeList:
		return "MakeList"
	case OpMakeExpr:
		return "MakeExpr"
	case OpCallBuiltin:
		return "CallBuiltin"
	case OpEnd:
		return "End"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// Instruction is one bytecode instruction. Which of Int/Str is meaningful
// depends on Op: PushConst/MakeList/MakeExpr use Int; PushSymbol uses Int
// as a symbol id; CallBuiltin uses both (Str is the builtin name, Int is
// the argument count).
type Instruction struct {
	Op  OpCode
	Int int
	Str string
}

// Program is the compiled, read-only half of interpreter state.
type Program struct {
	Instructions []Instruction
	JumpTable    []int // jump-table index -> program counter

	SymbolNames map[uint64]string // symbol id -> name, used by the resolver and the dump emitter
	symbolIDs   map[string]uint64 // name -> symbol id, builder-side only
}

func NewProgram() *Program {
	return &Program{
		SymbolNames: make(map[uint64]string),
		symbolIDs:   make(map[string]uint64),
	}
}

// InternSymbol returns the stable id for name, allocating a new one the
// first time name is seen.
func (p *Program) InternSymbol(name string) uint64 {
	if id, ok := p.symbolIDs[name]; ok {
		return id
	}
	id := uint64(len(p.symbolIDs) + 1)
	p.symbolIDs[name] = id
	p.SymbolNames[id] = name
	return id
}

type State int

const (
	StateRunning State = iota
	StateEnd
)

func (s State) String() string {
	if s == StateEnd {
		return "End"
	}
	return "Running"
}

type callFrame struct {
	returnPC int
}

// Session is the mutable half of interpreter state: everything a clone
// must deep-copy.
type Session struct {
	Heap    []value.Value
	Stack   []int
	Calls   []callFrame
	Cursor  int
	Current int // heap index of the terminal value; -1 if none yet
	State   State
}

// Interpreter couples a shared Program with an owned Session.
type Interpreter struct {
	Program *Program
	Session Session
}

// New creates an empty interpreter with a fresh Program and Session, ready
// for the builder to compile into.
func New() *Interpreter {
	return &Interpreter{
		Program: NewProgram(),
		Session: Session{Current: -1},
	}
}

// Clone deep-copies the Session while sharing the Program by pointer, the
// way every per-request dispatch clones the base interpreter.
func (ip *Interpreter) Clone() *Interpreter {
	heap := make([]value.Value, len(ip.Session.Heap))
	copy(heap, ip.Session.Heap)
	stack := make([]int, len(ip.Session.Stack))
	copy(stack, ip.Session.Stack)
	calls := make([]callFrame, len(ip.Session.Calls))
	copy(calls, ip.Session.Calls)
	return &Interpreter{
		Program: ip.Program,
		Session: Session{
			Heap:    heap,
			Stack:   stack,
			Calls:   calls,
			Cursor:  ip.Session.Cursor,
			Current: ip.Session.Current,
			State:   ip.Session.State,
		},
	}
}

// Alloc appends v to the heap and returns its index. Implements builtin.Heap.
func (ip *Interpreter) Alloc(v value.Value) int {
	ip.Session.Heap = append(ip.Session.Heap, v)
	return len(ip.Session.Heap) - 1
}

// Get returns the value stored at a heap index. Implements builtin.Heap.
func (ip *Interpreter) Get(idx int) value.Value {
	return ip.Session.Heap[idx]
}

func (ip *Interpreter) push(idx int) {
	ip.Session.Stack = append(ip.Session.Stack, idx)
}

// PushResolved pushes a heap index onto the register stack. A
// SymbolResolver calls this after allocating the value it resolved a
// symbol to; it is the only way a resolver is allowed to touch the
// register stack.
func (ip *Interpreter) PushResolved(idx int) {
	ip.push(idx)
}

func (ip *Interpreter) pop() (int, error) {
	n := len(ip.Session.Stack)
	if n == 0 {
		return 0, fmt.Errorf("vm: register stack underflow")
	}
	idx := ip.Session.Stack[n-1]
	ip.Session.Stack = ip.Session.Stack[:n-1]
	return idx, nil
}

// Seed resets the session to begin executing at program counter pc — the
// state every per-request clone is put into before running.
func (ip *Interpreter) Seed(pc int) error {
	if pc < 0 || pc >= len(ip.Program.Instructions) {
		return fmt.Errorf("vm: seed program counter %d out of instruction range [0,%d)", pc, len(ip.Program.Instructions))
	}
	ip.Session.Cursor = pc
	ip.Session.Stack = nil
	ip.Session.Calls = nil
	ip.Session.Current = -1
	ip.Session.State = StateRunning
	return nil
}

// CurrentValue returns the terminal value of the most recently completed
// run, if any.
func (ip *Interpreter) CurrentValue() (value.Value, bool) {
	if ip.Session.Current < 0 {
		return value.Value{}, false
	}
	return ip.Session.Heap[ip.Session.Current], true
}

// SymbolResolver is the host capability the interpreter calls back into
// when it needs to look up an unresolved symbol. It never mutates its own
// state; its only side effect is allocating onto ip's heap and pushing a
// resolved Expression value.
type SymbolResolver interface {
	Resolve(ip *Interpreter, symbolID uint64) (bool, error)
}

// NoopResolver always fails to resolve — the capability used while
// evaluating annotation expressions, which run without symbol resolution:
// a symbol reference inside an annotation is an execution error.
type NoopResolver struct{}

func (NoopResolver) Resolve(*Interpreter, uint64) (bool, error) { return false, nil }

// Step executes exactly one instruction.
func (ip *Interpreter) Step(resolver SymbolResolver) error {
	if ip.Session.State == StateEnd {
		return nil
	}
	if ip.Session.Cursor < 0 || ip.Session.Cursor >= len(ip.Program.Instructions) {
		return fmt.Errorf("vm: cursor %d out of instruction range", ip.Session.Cursor)
	}
	instr := ip.Program.Instructions[ip.Session.Cursor]

	switch instr.Op {
	case OpPushConst:
		ip.push(instr.Int)
		ip.Session.Cursor++

	case OpMakeExpr:
		idx := ip.Alloc(value.NewExpression(instr.Int))
		ip.push(idx)
		ip.Session.Cursor++

	case OpPushSymbol:
		if resolver == nil {
			resolver = NoopResolver{}
		}
		ok, err := resolver.Resolve(ip, uint64(instr.Int))
		if err != nil {
			return fmt.Errorf("vm: resolving symbol %q: %w", ip.Program.SymbolNames[uint64(instr.Int)], err)
		}
		if !ok {
			return fmt.Errorf("vm: unresolved symbol %q", ip.Program.SymbolNames[uint64(instr.Int)])
		}
		ip.Session.Cursor++

	case OpInvoke:
		top, err := ip.pop()
		if err != nil {
			return err
		}
		target, ok := ip.Session.Heap[top].AsExpression()
		if !ok {
			return fmt.Errorf("vm: invoke target is not an expression (got %s)", ip.Session.Heap[top].Kind)
		}
		if target < 0 || target >= len(ip.Program.JumpTable) {
			return fmt.Errorf("vm: invoke target %d out of jump-table range", target)
		}
		ip.Session.Calls = append(ip.Session.Calls, callFrame{returnPC: ip.Session.Cursor + 1})
		ip.Session.Cursor = ip.Program.JumpTable[target]

	case OpMakeList:
		n := instr.Int
		if len(ip.Session.Stack) < n {
			return fmt.Errorf("vm: register stack underflow building list of %d", n)
		}
		elems := make([]int, n)
		copy(elems, ip.Session.Stack[len(ip.Session.Stack)-n:])
		ip.Session.Stack = ip.Session.Stack[:len(ip.Session.Stack)-n]
		idx := ip.Alloc(value.NewList(elems))
		ip.push(idx)
		ip.Session.Cursor++

	case OpCallBuiltin:
		n := instr.Int
		if len(ip.Session.Stack) < n {
			return fmt.Errorf("vm: register stack underflow calling %s", instr.Str)
		}
		args := make([]value.Value, n)
		base := len(ip.Session.Stack) - n
		for i := 0; i < n; i++ {
			args[i] = ip.Session.Heap[ip.Session.Stack[base+i]]
		}
		ip.Session.Stack = ip.Session.Stack[:base]
		fn, ok := builtin.Table[instr.Str]
		if !ok {
			return fmt.Errorf("vm: unknown builtin %q", instr.Str)
		}
		result, err := fn(ip, args)
		if err != nil {
			return fmt.Errorf("vm: %s(): %w", instr.Str, err)
		}
		idx := ip.Alloc(result)
		ip.push(idx)
		ip.Session.Cursor++

	case OpEnd:
		if len(ip.Session.Calls) > 0 {
			n := len(ip.Session.Calls)
			frame := ip.Session.Calls[n-1]
			ip.Session.Calls = ip.Session.Calls[:n-1]
			ip.Session.Cursor = frame.returnPC
		} else {
			ip.Session.State = StateEnd
			if len(ip.Session.Stack) > 0 {
				ip.Session.Current = ip.Session.Stack[len(ip.Session.Stack)-1]
			}
		}

	default:
		return fmt.Errorf("vm: unknown opcode %d", instr.Op)
	}
	return nil
}

// Run steps the interpreter to completion (state End), stopping and
// returning the first per-step error rather than looping past it. Both the
// annotation evaluator and the request dispatcher use this.
func (ip *Interpreter) Run(resolver SymbolResolver) error {
	for ip.Session.State != StateEnd {
		if err := ip.Step(resolver); err != nil {
			return err
		}
	}
	return nil
}

// InstructionMetadata is a disassembled view of one instruction, used only
// by the dump emitter.
type InstructionMetadata struct {
	PC      int
	Op      string
	Operand string
}

// Disassemble renders every instruction in the program for diagnostic
// dumps, annotating PushSymbol operands with the resolved name when known.
func (p *Program) Disassemble() []InstructionMetadata {
	out := make([]InstructionMetadata, 0, len(p.Instructions))
	for pc, instr := range p.Instructions {
		operand := ""
		switch instr.Op {
		case OpPushSymbol:
			operand = fmt.Sprintf("%d (%s)", instr.Int, p.SymbolNames[uint64(instr.Int)])
		case OpCallBuiltin:
			operand = fmt.Sprintf("%s/%d", instr.Str, instr.Int)
		case OpPushConst, OpMakeList, OpMakeExpr:
			operand = fmt.Sprintf("%d", instr.Int)
		}
		out = append(out, InstructionMetadata{PC: pc, Op: instr.Op.String(), Operand: operand})
	}
	return out
}

// DisassembleUnit renders the instructions belonging to the standalone unit
// starting at startPC: every instruction from startPC up to and including
// the next OpEnd, the same straight-line range the unit executes before
// returning to its caller or halting.
func (p *Program) DisassembleUnit(startPC int) []InstructionMetadata {
	full := p.Disassemble()
	if startPC < 0 || startPC >= len(full) {
		return nil
	}
	end := startPC
	for end < len(full) && full[end].Op != OpEnd.String() {
		end++
	}
	if end < len(full) {
		end++ // include the OpEnd itself
	}
	return full[startPC:end]
}
