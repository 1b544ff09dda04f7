// Package builder compiles garnish AST nodes into bytecode appended to a
// vm.Interpreter's Program: a single recursive descent over the AST that
// emits one or a few instructions per node, with no intermediate IR.
//
// Every call to Compile produces one standalone, separately-invocable
// unit: a jump-table entry plus the instruction sequence it points at,
// terminated by vm.OpEnd. Nested { block } literals are NOT compiled
// inline — doing so would splice their instructions into the middle of
// the enclosing unit's sequential flow. Instead each BlockLit reserves its
// jump-table slot immediately (so OpMakeExpr has a stable index to embed)
// and queues its body to be compiled as its own trailing unit once the
// enclosing unit is finished, draining the queue until no nested blocks
// remain.
package builder

import (
	"fmt"

	"github.com/garnish-lang/web-garnish/internal/lang/ast"
	"github.com/garnish-lang/web-garnish/internal/lang/value"
	"github.com/garnish-lang/web-garnish/internal/lang/vm"
)

type pendingBlock struct {
	jumpIdx int
	body    ast.Node
}

type compiler struct {
	ip      *vm.Interpreter
	pending []pendingBlock
}

// Compile compiles expr as a new unit and returns its jump-table index.
// Compile may be called repeatedly against the same interpreter (once per
// route body, once per annotation expression) — each call only ever
// appends, never rewrites, earlier instructions or jump-table entries.
func Compile(ip *vm.Interpreter, expr ast.Node) (int, error) {
	c := &compiler{ip: ip}
	jumpIdx, err := c.compileUnit(expr)
	if err != nil {
		return 0, err
	}
	for len(c.pending) > 0 {
		item := c.pending[0]
		c.pending = c.pending[1:]
		entryPC := len(ip.Program.Instructions)
		ip.Program.JumpTable[item.jumpIdx] = entryPC
		if err := c.compileExpr(item.body); err != nil {
			return 0, err
		}
		c.emit(vm.Instruction{Op: vm.OpEnd})
	}
	return jumpIdx, nil
}

func (c *compiler) compileUnit(expr ast.Node) (int, error) {
	entryPC := len(c.ip.Program.Instructions)
	jumpIdx := len(c.ip.Program.JumpTable)
	c.ip.Program.JumpTable = append(c.ip.Program.JumpTable, entryPC)
	if err := c.compileExpr(expr); err != nil {
		return 0, err
	}
	c.emit(vm.Instruction{Op: vm.OpEnd})
	return jumpIdx, nil
}

func (c *compiler) emit(instr vm.Instruction) {
	c.ip.Program.Instructions = append(c.ip.Program.Instructions, instr)
}

func (c *compiler) compileExpr(n ast.Node) error {
	switch node := n.(type) {
	case *ast.NumberLit:
		idx := c.ip.Alloc(value.NewNumber(node.Value))
		c.emit(vm.Instruction{Op: vm.OpPushConst, Int: idx})

	case *ast.StringLit:
		idx := c.ip.Alloc(value.NewCharList(node.Value))
		c.emit(vm.Instruction{Op: vm.OpPushConst, Int: idx})

	case *ast.BoolLit:
		idx := c.ip.Alloc(value.NewBool(node.Value))
		c.emit(vm.Instruction{Op: vm.OpPushConst, Int: idx})

	case *ast.NilLit:
		idx := c.ip.Alloc(value.NewNil())
		c.emit(vm.Instruction{Op: vm.OpPushConst, Int: idx})

	case *ast.SymbolRef:
		id := c.ip.Program.InternSymbol(node.Name)
		c.emit(vm.Instruction{Op: vm.OpPushSymbol, Int: int(id)})
		if !node.Quoted {
			c.emit(vm.Instruction{Op: vm.OpInvoke})
		}

	case *ast.ListLit:
		for _, el := range node.Elements {
			if err := c.compileExpr(el); err != nil {
				return err
			}
		}
		c.emit(vm.Instruction{Op: vm.OpMakeList, Int: len(node.Elements)})

	case *ast.BlockLit:
		jumpIdx := len(c.ip.Program.JumpTable)
		c.ip.Program.JumpTable = append(c.ip.Program.JumpTable, -1)
		c.pending = append(c.pending, pendingBlock{jumpIdx: jumpIdx, body: node.Body})
		c.emit(vm.Instruction{Op: vm.OpMakeExpr, Int: jumpIdx})

	case *ast.Call:
		for _, arg := range node.Args {
			if err := c.compileExpr(arg); err != nil {
				return err
			}
		}
		c.emit(vm.Instruction{Op: vm.OpCallBuiltin, Str: node.Name, Int: len(node.Args)})

	default:
		return fmt.Errorf("builder: unhandled ast node %T", n)
	}
	return nil
}
