package command

import "strings"

// Quote returns s as a single POSIX shell word. Words made only of safe characters
// are returned unchanged so logged commands stay readable.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if isSafe(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

func isSafe(s string) bool {
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.ContainsRune("-_.,:/=+@%", c):
		default:
			return false
		}
	}
	return true
}
