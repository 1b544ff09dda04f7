// normalizeSlashes and trimBasePrefix normalize to "/" separators so route
// derivation behaves identically regardless of the host OS's path
// separator.
package garnish

import "strings"

func normalizeSlashes(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// trimBasePrefix strips basePath from filePath, both normalized to forward
// slashes first, and reports whether basePath was actually a prefix.
func trimBasePrefix(basePath, filePath string) (string, bool) {
	base := strings.TrimSuffix(normalizeSlashes(basePath), "/")
	file := normalizeSlashes(filePath)
	if base == "" {
		return strings.TrimPrefix(file, "/"), true
	}
	if file == base {
		return "", true
	}
	if !strings.HasPrefix(file, base+"/") {
		return "", false
	}
	return file[len(base)+1:], true
}
