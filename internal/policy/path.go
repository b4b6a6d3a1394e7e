package policy

import "strings"

// ValidateFolderPath rejects anything that could escape or probe the
// storage tree. It runs before any database or filesystem interaction
// and never sanitizes: a bad path is refused, not repaired.
//
// Rejected: traversal (".."), absolute paths (leading "/" or "\"),
// doubled separators, NUL bytes, characters outside [A-Za-z0-9_./-],
// and any segment starting with a dot (hidden folders).
func ValidateFolderPath(path string) bool {
	if path == "" {
		return false
	}
	if strings.Contains(path, "..") {
		return false
	}
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return false
	}
	if strings.Contains(path, "//") || strings.Contains(path, "\\\\") {
		return false
	}
	if strings.ContainsRune(path, 0) {
		return false
	}
	for _, c := range path {
		if !isAllowedPathChar(c) {
			return false
		}
	}
	if strings.HasPrefix(path, ".") || strings.Contains(path, "/.") {
		return false
	}
	if strings.HasSuffix(path, "/") {
		return false
	}
	return true
}

func isAllowedPathChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '/' || c == '-':
		return true
	default:
		return false
	}
}
