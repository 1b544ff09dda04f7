package garnish

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/garnish-lang/web-garnish/internal/collector"
	"github.com/garnish-lang/web-garnish/internal/lang/builder"
	"github.com/garnish-lang/web-garnish/internal/lang/lexer"
	"github.com/garnish-lang/web-garnish/internal/lang/parser"
	"github.com/garnish-lang/web-garnish/internal/lang/vm"
)

// CompileResult is everything FileCompiler produces: the completed route
// map, the base interpreter (shared, read-only Program; a Session whose
// heap holds every compiled constant, ready to be cloned and seeded per
// request), the symbol context, and the build
// metadata trail the dump emitter reads.
type CompileResult struct {
	Routes  RouteMap
	Interp  *vm.Interpreter
	Symbols *SymbolContext
	Builds  []BuildMetadata
}

// DiscoverFiles walks servePath for every *.garnish file, in a stable
// (lexicographic) order so repeated compiles of an unchanged tree produce
// byte-identical dumps.
func DiscoverFiles(servePath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(servePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".garnish" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CompileTree compiles every discovered file under servePath into a single
// shared Program, in the order methods/defs-before-root described in the
// ordering rationale: each file's annotations are registered before its
// root, so the root may reference them symbolically.
//
// A file whose root expression fails to compile, or whose root resolves to
// a missing jump-table entry, is a fatal startup error for the whole tree:
// compileFile reports it and the loop stops immediately. A file whose
// @Method annotation resolves to a missing jump-table entry is not: that
// one file's compile aborts (compileFile logs it and returns early without
// an error) but every other file still compiles, and the server still
// starts.
func CompileTree(servePath string, files []string, log zerolog.Logger) (*CompileResult, error) {
	result := &CompileResult{
		Routes:  make(RouteMap),
		Interp:  vm.New(),
		Symbols: NewSymbolContext(),
	}

	for _, path := range files {
		if err := compileFile(result, servePath, path, log); err != nil {
			return nil, fmt.Errorf("compiling %s: %w", path, err)
		}
	}
	return result, nil
}

func compileFile(result *CompileResult, basePath, path string, log zerolog.Logger) error {
	route, fileType, err := RouteKey(basePath, path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("skipping file outside base path")
		return nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	tokens := lexer.GetTokens(string(src))
	blocks := collector.Collect(tokens)

	methodBlocks := collector.ByLabel(blocks, "@Method")
	defBlocks := collector.ByLabel(blocks, "@Def")

	for _, block := range methodBlocks {
		res, err := EvaluateAnnotation(result.Interp, block.Tokens)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping @Method annotation")
			continue
		}
		if res.JumpIdx < 0 || res.JumpIdx >= len(result.Interp.Program.JumpTable) {
			log.Error().Str("path", path).Str("method", res.Name).Msg("method annotation has no jump-table entry, aborting this file's compile")
			return nil
		}
		start := result.Interp.Program.JumpTable[res.JumpIdx]
		key := res.Name + "@" + route
		result.Routes[key] = RouteInfo{Key: key, FileType: fileType, ExecutionStart: start}
		result.Symbols.InsertExpression(key, res.JumpIdx)
		result.Builds = append(result.Builds, BuildMetadata{
			Route:           route,
			Label:           "@Method",
			Name:            res.Name,
			JumpIdx:         res.JumpIdx,
			ExecutionStart:  start,
			Source:          path,
			Tokens:          block.Tokens,
			ParseTree:       res.ParseTree,
			InstructionData: result.Interp.Program.DisassembleUnit(start),
		})
	}

	for _, block := range defBlocks {
		res, err := EvaluateAnnotation(result.Interp, block.Tokens)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping @Def annotation")
			continue
		}
		result.Symbols.InsertExpression(res.Name, res.JumpIdx)
		build := BuildMetadata{
			Route:     route,
			Label:     "@Def",
			Name:      res.Name,
			JumpIdx:   res.JumpIdx,
			Source:    path,
			Tokens:    block.Tokens,
			ParseTree: res.ParseTree,
		}
		if res.JumpIdx >= 0 && res.JumpIdx < len(result.Interp.Program.JumpTable) {
			build.ExecutionStart = result.Interp.Program.JumpTable[res.JumpIdx]
			build.InstructionData = result.Interp.Program.DisassembleUnit(build.ExecutionStart)
		}
		result.Builds = append(result.Builds, build)
	}

	rootTokens := collector.Roots(blocks)
	parsed := parser.Parse(rootTokens)
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("parsing root expression: %v", parsed.Errors[0])
	}
	if len(parsed.Nodes) == 0 {
		return nil
	}

	jumpIdx, err := builder.Compile(result.Interp, parsed.Nodes[0])
	if err != nil {
		return fmt.Errorf("building root bytecode: %w", err)
	}
	if jumpIdx < 0 || jumpIdx >= len(result.Interp.Program.JumpTable) {
		return fmt.Errorf("%w: root of %s", ErrMissingJumpPoint, path)
	}
	start := result.Interp.Program.JumpTable[jumpIdx]
	result.Routes[route] = RouteInfo{Key: route, FileType: fileType, ExecutionStart: start}
	result.Symbols.InsertExpression(route, jumpIdx)
	result.Builds = append(result.Builds, BuildMetadata{
		Route:           route,
		JumpIdx:         jumpIdx,
		ExecutionStart:  start,
		Source:          path,
		Tokens:          rootTokens,
		ParseTree:       parsed,
		InstructionData: result.Interp.Program.DisassembleUnit(start),
	})
	return nil
}
