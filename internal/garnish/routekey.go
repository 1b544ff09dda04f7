package garnish

import (
	"fmt"
	"strings"
)

type FileType int

const (
	FileTypeHTML FileType = iota
	FileTypeCSS
)

func (t FileType) String() string {
	if t == FileTypeCSS {
		return "Css"
	}
	return "Html"
}

// PathError is returned by RouteKey when basePath is not a prefix of
// filePath.
type PathError struct {
	BasePath string
	FilePath string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("garnish: base path %q is not a prefix of %q", e.BasePath, e.FilePath)
}

// RouteKey derives a route string and FileType from a compiled file's path
// relative to basePath: strip the basePath prefix, drop a trailing
// ".garnish" segment, then strip a further ".html"/".css" suffix to pick
// the FileType (Html is the default).
func RouteKey(basePath, filePath string) (string, FileType, error) {
	rel, ok := trimBasePrefix(basePath, filePath)
	if !ok {
		return "", FileTypeHTML, &PathError{BasePath: basePath, FilePath: filePath}
	}
	rel = strings.TrimSuffix(rel, ".garnish")

	if stripped, found := strings.CutSuffix(rel, ".css"); found {
		return stripped, FileTypeCSS, nil
	}
	if stripped, found := strings.CutSuffix(rel, ".html"); found {
		return stripped, FileTypeHTML, nil
	}
	return rel, FileTypeHTML, nil
}
