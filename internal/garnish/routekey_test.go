package garnish

import "testing"

func TestRouteKeySuffixLaw(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		file     string
		wantKey  string
		wantType FileType
	}{
		{"plain html default", "/site", "/site/index.garnish", "index", FileTypeHTML},
		{"explicit html suffix", "/site", "/site/about.html.garnish", "about", FileTypeHTML},
		{"css suffix", "/site", "/site/styles.css.garnish", "styles", FileTypeCSS},
		{"nested route", "/site", "/site/blog/post.garnish", "blog/post", FileTypeHTML},
		{"nested css route", "/site", "/site/blog/post.css.garnish", "blog/post", FileTypeCSS},
		{"exact base match", "/site", "/site", "", FileTypeHTML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ft, err := RouteKey(tt.base, tt.file)
			if err != nil {
				t.Fatalf("RouteKey: %v", err)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
			if ft != tt.wantType {
				t.Errorf("type = %v, want %v", ft, tt.wantType)
			}
		})
	}
}

func TestRouteKeyRejectsNonPrefix(t *testing.T) {
	_, _, err := RouteKey("/site", "/other/index.garnish")
	if err == nil {
		t.Fatalf("expected error when basePath is not a prefix")
	}
	var pathErr *PathError
	if _, ok := err.(*PathError); !ok {
		t.Errorf("got error of type %T, want *PathError", err)
	}
	_ = pathErr
}

func TestRouteKeyNormalizesBackslashes(t *testing.T) {
	key, ft, err := RouteKey(`C:\site`, `C:\site\blog\post.garnish`)
	if err != nil {
		t.Fatalf("RouteKey: %v", err)
	}
	if key != "blog/post" {
		t.Errorf("key = %q, want blog/post", key)
	}
	if ft != FileTypeHTML {
		t.Errorf("type = %v, want Html", ft)
	}
}
