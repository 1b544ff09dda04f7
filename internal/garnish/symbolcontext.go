package garnish

import (
	"github.com/garnish-lang/web-garnish/internal/lang/value"
	"github.com/garnish-lang/web-garnish/internal/lang/vm"
)

// SymbolContext is the host-side capability the interpreter calls back
// into to resolve a symbol it doesn't itself know about: every @Def and
// named route registered across the whole compiled tree, keyed by name.
// It implements vm.SymbolResolver.
type SymbolContext struct {
	expressionMap map[string]int // name -> jump-table index
}

func NewSymbolContext() *SymbolContext {
	return &SymbolContext{expressionMap: make(map[string]int)}
}

// InsertExpression upserts name -> jumpIdx; last writer wins.
func (c *SymbolContext) InsertExpression(name string, jumpIdx int) {
	c.expressionMap[name] = jumpIdx
}

// Lookup returns the jump-table index registered for name, if any. Used by
// the dump emitter for name annotation.
func (c *SymbolContext) Lookup(name string) (int, bool) {
	idx, ok := c.expressionMap[name]
	return idx, ok
}

// Names returns every registered name, for diagnostic dumps.
func (c *SymbolContext) Names() []string {
	names := make([]string, 0, len(c.expressionMap))
	for name := range c.expressionMap {
		names = append(names, name)
	}
	return names
}

// Resolve implements vm.SymbolResolver: look up the symbol id's name in
// the interpreter's own symbol table, then look that name up in
// expressionMap. On a hit, allocate an Expression value referencing the
// resolved jump-table index and push it. Never mutates expressionMap and
// never fails structurally.
func (c *SymbolContext) Resolve(ip *vm.Interpreter, symbolID uint64) (bool, error) {
	name, ok := ip.Program.SymbolNames[symbolID]
	if !ok {
		return false, nil
	}
	jumpIdx, ok := c.expressionMap[name]
	if !ok {
		return false, nil
	}
	idx := ip.Alloc(value.NewExpression(jumpIdx))
	ip.PushResolved(idx)
	return true, nil
}
