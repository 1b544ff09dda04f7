package garnish

import (
	"github.com/garnish-lang/web-garnish/internal/lang/parser"
	"github.com/garnish-lang/web-garnish/internal/lang/token"
	"github.com/garnish-lang/web-garnish/internal/lang/vm"
)

// RouteInfo is what a RouteMap entry resolves a request to.
type RouteInfo struct {
	Key            string
	FileType       FileType
	ExecutionStart int // program counter
}

// RouteMap maps a route key ("<path>" or "<METHOD>@<path>") to the
// compiled unit that serves it. Last writer wins on collision — this is
// documented behavior, not an error (see the open-questions decisions).
type RouteMap map[string]RouteInfo

// BuildMetadata records one compiled unit for the dump emitter: where it
// came from, what it's registered as, its jump-table index and starting
// program counter, the raw tokens and parse tree it was compiled from, and
// the disassembled instructions belonging to the unit itself. Constructed
// once at compile time; read-only afterward.
type BuildMetadata struct {
	Route           string
	Label           string // "" for a root unit, "@Method" or "@Def" otherwise
	Name            string // annotation-decoded name, "" for root units
	JumpIdx         int
	ExecutionStart  int // program counter
	Source          string // the source file this unit was compiled from
	Tokens          []token.Token
	ParseTree       parser.Result
	InstructionData []vm.InstructionMetadata
}
