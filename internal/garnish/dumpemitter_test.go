package garnish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFingerprintIsStableAcrossRecompiles(t *testing.T) {
	dir := t.TempDir()
	result := compileFixture(t, dir, map[string]string{
		"index.garnish": `node("div", nil, [text("root")])`,
	})
	e1 := &DumpEmitter{Result: result}
	fp1, err := e1.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}

	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	result2, err := CompileTree(dir, files, discardLogger())
	if err != nil {
		t.Fatalf("CompileTree: %v", err)
	}
	e2 := &DumpEmitter{Result: result2}
	fp2, err := e2.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}

	if fp1 != fp2 {
		t.Errorf("fingerprints differ across identical recompiles: %q vs %q", fp1, fp2)
	}
}

func TestFingerprintChangesWithSourceContent(t *testing.T) {
	dir := t.TempDir()
	result := compileFixture(t, dir, map[string]string{
		"index.garnish": `node("div", nil, [text("root")])`,
	})
	e1 := &DumpEmitter{Result: result}
	fp1, err := e1.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "index.garnish"), []byte(`node("div", nil, [text("changed")])`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	result2, err := CompileTree(dir, files, discardLogger())
	if err != nil {
		t.Fatalf("CompileTree: %v", err)
	}
	e2 := &DumpEmitter{Result: result2}
	fp2, err := e2.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fp1 == fp2 {
		t.Errorf("fingerprint should change when source content changes")
	}
}

func TestWriteToProducesFourArtifactCategories(t *testing.T) {
	dir := t.TempDir()
	result := compileFixture(t, dir, map[string]string{
		"index.garnish": `node("div", nil, [text("root")])`,
	})
	out := t.TempDir()
	emitter := &DumpEmitter{Result: result}
	if err := emitter.WriteTo(out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var hasBuild, hasRuntime, hasExecution bool
	for _, e := range entries {
		switch {
		case e.Name() == "runtime.txt":
			hasRuntime = true
		case e.Name() == "execution.txt":
			hasExecution = true
		case filepath.Ext(e.Name()) == ".txt":
			hasBuild = true
		}
	}
	if !hasBuild || !hasRuntime || !hasExecution {
		t.Errorf("missing artifacts in %v", entries)
	}
	runtimeText, err := os.ReadFile(filepath.Join(out, "runtime.txt"))
	if err != nil {
		t.Fatalf("ReadFile runtime.txt: %v", err)
	}
	if !strings.HasPrefix(string(runtimeText), "fingerprint: ") {
		t.Errorf("runtime.txt should begin with the fingerprint line, got %q", runtimeText)
	}
}

func TestWriteToRejectsUnknownRoute(t *testing.T) {
	dir := t.TempDir()
	result := compileFixture(t, dir, map[string]string{
		"index.garnish": `node("div", nil, [text("root")])`,
	})
	emitter := &DumpEmitter{Result: result, Route: "does-not-exist"}
	if err := emitter.WriteTo(t.TempDir()); err == nil {
		t.Errorf("expected an error for an unknown dump route")
	}
}
