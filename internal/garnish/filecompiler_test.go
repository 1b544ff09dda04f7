package garnish

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeGarnishFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func discardLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestDiscoverFilesFindsGarnishExtensionOnly(t *testing.T) {
	dir := t.TempDir()
	writeGarnishFile(t, dir, "index.garnish", `nil`)
	writeGarnishFile(t, dir, "notes.txt", `not garnish`)
	writeGarnishFile(t, dir, "blog/post.garnish", `nil`)

	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
	// Lexicographic, so blog/post.garnish sorts before index.garnish.
	if filepath.Base(files[0]) != "post.garnish" || filepath.Base(files[1]) != "index.garnish" {
		t.Errorf("unexpected order: %v", files)
	}
}

func TestCompileTreeRegistersRootRoute(t *testing.T) {
	dir := t.TempDir()
	writeGarnishFile(t, dir, "index.garnish", `node("div", nil, [text("root")])`)

	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	result, err := CompileTree(dir, files, discardLogger())
	if err != nil {
		t.Fatalf("CompileTree: %v", err)
	}
	info, ok := result.Routes["index"]
	if !ok {
		t.Fatalf("expected route %q to be registered, got %v", "index", result.Routes)
	}
	if info.ExecutionStart < 0 || info.ExecutionStart >= len(result.Interp.Program.Instructions) {
		t.Errorf("ExecutionStart %d out of instruction range", info.ExecutionStart)
	}
	if info.FileType != FileTypeHTML {
		t.Errorf("FileType = %v, want Html", info.FileType)
	}
}

func TestCompileTreeRegistersMethodQualifiedRoute(t *testing.T) {
	dir := t.TempDir()
	writeGarnishFile(t, dir, "index.garnish", `
@Method ("GET", {node("p", nil, [text("hi")])});
node("div", nil, [text("root")])
`)

	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	result, err := CompileTree(dir, files, discardLogger())
	if err != nil {
		t.Fatalf("CompileTree: %v", err)
	}
	if _, ok := result.Routes["GET@index"]; !ok {
		t.Fatalf("expected method-qualified route GET@index, got %v", result.Routes)
	}
	if _, ok := result.Routes["index"]; !ok {
		t.Fatalf("expected plain root route index, got %v", result.Routes)
	}
	if _, ok := result.Symbols.Lookup("GET@index"); !ok {
		t.Errorf("expected symbol table to register GET@index")
	}
}

func TestCompileTreeEmptyRootLeavesRouteUnset(t *testing.T) {
	dir := t.TempDir()
	writeGarnishFile(t, dir, "index.garnish", `
@Def ("unused", {nil});
`)

	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	result, err := CompileTree(dir, files, discardLogger())
	if err != nil {
		t.Fatalf("CompileTree: %v", err)
	}
	if _, ok := result.Routes["index"]; ok {
		t.Errorf("an empty root parse should not register a route")
	}
	if _, ok := result.Symbols.Lookup("unused"); !ok {
		t.Errorf("expected the @Def to still be registered")
	}
}

func TestCompileTreeCSSFileGetsCSSFileType(t *testing.T) {
	dir := t.TempDir()
	writeGarnishFile(t, dir, "styles.css.garnish", `rule(".box", [decl("color", "red")])`)

	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	result, err := CompileTree(dir, files, discardLogger())
	if err != nil {
		t.Fatalf("CompileTree: %v", err)
	}
	info, ok := result.Routes["styles"]
	if !ok {
		t.Fatalf("expected route styles, got %v", result.Routes)
	}
	if info.FileType != FileTypeCSS {
		t.Errorf("FileType = %v, want Css", info.FileType)
	}
}

func TestCompileFileOrdersMethodBuildsBeforeDefBuilds(t *testing.T) {
	dir := t.TempDir()
	writeGarnishFile(t, dir, "index.garnish", `
@Def ("helper", {"unused"});
@Method ("GET", {node("p", nil, [text("hi")])});
node("div", nil, [text("root")])
`)
	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	result, err := CompileTree(dir, files, discardLogger())
	if err != nil {
		t.Fatalf("CompileTree: %v", err)
	}
	if len(result.Builds) < 2 {
		t.Fatalf("expected at least 2 builds, got %d: %+v", len(result.Builds), result.Builds)
	}
	if result.Builds[0].Label != "@Method" {
		t.Errorf("Builds[0].Label = %q, want @Method (methods compile before defs)", result.Builds[0].Label)
	}
	if result.Builds[1].Label != "@Def" {
		t.Errorf("Builds[1].Label = %q, want @Def", result.Builds[1].Label)
	}
}

func TestCompileTreeBuildsCarryDiagnosticMetadata(t *testing.T) {
	dir := t.TempDir()
	writeGarnishFile(t, dir, "index.garnish", `node("div", nil, [text("root")])`)
	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	result, err := CompileTree(dir, files, discardLogger())
	if err != nil {
		t.Fatalf("CompileTree: %v", err)
	}
	if len(result.Builds) != 1 {
		t.Fatalf("got %d builds, want 1", len(result.Builds))
	}
	b := result.Builds[0]
	if len(b.Tokens) == 0 {
		t.Errorf("expected non-empty Tokens")
	}
	if len(b.ParseTree.Nodes) != 1 {
		t.Errorf("expected exactly one parsed root node, got %d", len(b.ParseTree.Nodes))
	}
	if len(b.InstructionData) == 0 {
		t.Errorf("expected non-empty InstructionData")
	}
	if last := b.InstructionData[len(b.InstructionData)-1]; last.Op != "End" {
		t.Errorf("expected InstructionData to end with OpEnd, got %s", last.Op)
	}
	if b.ExecutionStart != 0 {
		// The only unit in this tree starts at pc 0.
		t.Errorf("ExecutionStart = %d, want 0", b.ExecutionStart)
	}
}

func TestCompileTreeAbortsEntirelyOnRootParseError(t *testing.T) {
	dir := t.TempDir()
	writeGarnishFile(t, dir, "a.garnish", `node("div", nil, [text("fine")])`)
	writeGarnishFile(t, dir, "b-broken.garnish", `node(`) // unterminated call: a root-level parse error
	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	if _, err := CompileTree(dir, files, discardLogger()); err == nil {
		t.Fatalf("expected a fatal error when a file's root expression fails to parse")
	}
}

func TestCompileTreeEveryBuildHasValidJumpIdx(t *testing.T) {
	dir := t.TempDir()
	writeGarnishFile(t, dir, "index.garnish", `
@Def ("greeting", {"hi"});
node("div", nil, [text("root")])
`)
	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	result, err := CompileTree(dir, files, discardLogger())
	if err != nil {
		t.Fatalf("CompileTree: %v", err)
	}
	for _, b := range result.Builds {
		if b.JumpIdx < 0 || b.JumpIdx >= len(result.Interp.Program.JumpTable) {
			t.Errorf("build %+v has jump index out of range", b)
		}
	}
}
