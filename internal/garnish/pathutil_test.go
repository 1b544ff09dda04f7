package garnish

import "testing"

func TestTrimBasePrefixEmptyBase(t *testing.T) {
	rel, ok := trimBasePrefix("", "/site/index.garnish")
	if !ok {
		t.Fatalf("expected an empty base path to always match")
	}
	if rel != "site/index.garnish" {
		t.Errorf("rel = %q, want site/index.garnish", rel)
	}
}

func TestTrimBasePrefixNonPrefix(t *testing.T) {
	if _, ok := trimBasePrefix("/site", "/other/index.garnish"); ok {
		t.Errorf("expected false when basePath is not a prefix")
	}
}

func TestNormalizeSlashesConvertsBackslashes(t *testing.T) {
	if got := normalizeSlashes(`a\b\c`); got != "a/b/c" {
		t.Errorf("got %q, want a/b/c", got)
	}
}
