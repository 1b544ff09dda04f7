package garnish

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/garnish-lang/web-garnish/internal/lang/vm"
)

// DumpEmitter produces the diagnostic artifacts dump mode writes out: a
// build-metadata dump per compiled unit, a fingerprinted runtime snapshot,
// and a step-by-step execution trace. It is never invoked during request
// handling.
type DumpEmitter struct {
	Result *CompileResult
	Route  string // optional: seed the trace at this route's executionStart
}

// Fingerprint computes the blake2b-256 digest over the contents of every
// source file that produced a compiled unit, each file hashed once, in the
// order the files first appear in Builds, hex-encoded — stable across
// repeated runs of an unchanged source tree because Builds is populated in
// deterministic file-discovery order.
func (e *DumpEmitter) Fingerprint() (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	seen := make(map[string]bool)
	for _, b := range e.Result.Builds {
		if seen[b.Source] {
			continue
		}
		seen[b.Source] = true
		src, err := os.ReadFile(b.Source)
		if err != nil {
			return "", fmt.Errorf("reading %s for fingerprint: %w", b.Source, err)
		}
		if _, err := h.Write(src); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// WriteTo writes all four artifacts either to files under dir (dir != "")
// or to stdout.
func (e *DumpEmitter) WriteTo(dir string) error {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	for i, b := range e.Result.Builds {
		name := fmt.Sprintf("build-%02d.txt", i)
		if err := e.writeArtifact(dir, name, e.buildMetadataText(b)); err != nil {
			return err
		}
	}

	runtimeText, err := e.runtimeText()
	if err != nil {
		return err
	}
	if err := e.writeArtifact(dir, "runtime.txt", runtimeText); err != nil {
		return err
	}

	execText, err := e.executionText()
	if err != nil {
		return err
	}
	return e.writeArtifact(dir, "execution.txt", execText)
}

func (e *DumpEmitter) writeArtifact(dir, name, content string) error {
	if dir == "" {
		fmt.Printf("=== %s ===\n%s\n", name, content)
		return nil
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}

func (e *DumpEmitter) buildMetadataText(b BuildMetadata) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "route: %s\n", b.Route)
	fmt.Fprintf(&sb, "source: %s\n", b.Source)
	if b.Label != "" {
		fmt.Fprintf(&sb, "annotation: %s\n", b.Label)
		fmt.Fprintf(&sb, "name: %s\n", b.Name)
	}
	fmt.Fprintf(&sb, "jump index: %d\n", b.JumpIdx)
	fmt.Fprintf(&sb, "execution start: pc=%d\n", b.ExecutionStart)

	fmt.Fprintf(&sb, "\ntokens (%d):\n", len(b.Tokens))
	for _, tok := range b.Tokens {
		fmt.Fprintf(&sb, "  %s\n", tok)
	}

	fmt.Fprintf(&sb, "\nparse tree (%d node(s)):\n", len(b.ParseTree.Nodes))
	for _, n := range b.ParseTree.Nodes {
		fmt.Fprintf(&sb, "  %T\n", n)
	}
	for _, perr := range b.ParseTree.Errors {
		fmt.Fprintf(&sb, "  parse error: %v\n", perr)
	}

	fmt.Fprintf(&sb, "\ninstructions (%d):\n", len(b.InstructionData))
	for _, m := range b.InstructionData {
		fmt.Fprintf(&sb, "  %04d  %-12s %s\n", m.PC, m.Op, m.Operand)
	}
	return sb.String()
}

func (e *DumpEmitter) runtimeText() (string, error) {
	fp, err := e.Fingerprint()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "fingerprint: %s\n\n", fp)

	fmt.Fprintf(&sb, "routes (%d):\n", len(e.Result.Routes))
	keys := make([]string, 0, len(e.Result.Routes))
	for k := range e.Result.Routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		info := e.Result.Routes[k]
		fmt.Fprintf(&sb, "  %s -> start=%d type=%s\n", k, info.ExecutionStart, info.FileType)
	}

	names := e.Result.Symbols.Names()
	sort.Strings(names)
	fmt.Fprintf(&sb, "\nsymbols (%d):\n", len(names))
	for _, name := range names {
		idx, _ := e.Result.Symbols.Lookup(name)
		fmt.Fprintf(&sb, "  %s -> jump[%d]\n", name, idx)
	}

	fmt.Fprintf(&sb, "\njump table (%d entries):\n", len(e.Result.Interp.Program.JumpTable))
	for idx, pc := range e.Result.Interp.Program.JumpTable {
		fmt.Fprintf(&sb, "  [%d] -> pc %d\n", idx, pc)
	}

	fmt.Fprintf(&sb, "\ninstructions (%d):\n", len(e.Result.Interp.Program.Instructions))
	for _, m := range e.Result.Interp.Program.Disassemble() {
		fmt.Fprintf(&sb, "  %04d  %-12s %s\n", m.PC, m.Op, m.Operand)
	}

	fmt.Fprintf(&sb, "\nheap (%d values):\n", len(e.Result.Interp.Session.Heap))
	for idx, v := range e.Result.Interp.Session.Heap {
		fmt.Fprintf(&sb, "  [%d] %s\n", idx, v)
	}

	return sb.String(), nil
}

func (e *DumpEmitter) executionText() (string, error) {
	clone := e.Result.Interp.Clone()
	start := 0
	if e.Route != "" {
		info, ok := e.Result.Routes[e.Route]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrRouteNotFound, e.Route)
		}
		start = info.ExecutionStart
	}
	if err := clone.Seed(start); err != nil {
		return "", fmt.Errorf("seeding trace: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "trace start: pc=%d route=%q\n", start, e.Route)
	step := 0
	for clone.Session.State != vm.StateEnd {
		pc := clone.Session.Cursor
		err := clone.Step(e.Result.Symbols)
		fmt.Fprintf(&sb, "step %d: pc=%d state=%s", step, pc, clone.Session.State)
		if err != nil {
			fmt.Fprintf(&sb, " error=%v", err)
			sb.WriteByte('\n')
			return sb.String(), nil
		}
		sb.WriteByte('\n')
		step++
	}
	if current, ok := clone.CurrentValue(); ok {
		fmt.Fprintf(&sb, "final value: %s\n", current)
	}
	return sb.String(), nil
}
