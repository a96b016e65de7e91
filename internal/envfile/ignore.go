package envfile

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IsIgnored reports whether entry is covered by the project's ignore file under
// gitignore pattern rules. A missing or unreadable file ignores nothing.
func (s *Store) IsIgnored(entry string) bool {
	data, err := s.fs.ReadFile(s.Path(s.files.Ignore))
	if err != nil {
		return false
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return false
	}

	matcher := gitignore.NewMatcher(patterns)
	return matcher.Match(strings.Split(entry, "/"), false)
}
