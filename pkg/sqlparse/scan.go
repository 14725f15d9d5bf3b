package sqlparse

import (
	"regexp"
	"strings"
	"sync"
)

var (
	wordPatterns   = make(map[string]*regexp.Regexp)
	wordPatternsMu sync.RWMutex
)

// ContainsWord reports whether sql contains word as a whole word,
// case-insensitively. Word-boundary matching means a column literally named
// "updated_at" never matches the keyword UPDATE.
func ContainsWord(sql, word string) bool {
	pattern := wordPattern(word)
	return pattern.MatchString(sql)
}

// FirstForbiddenWord returns the first denylisted word found in sql as a
// whole word, or "" when none match. The scan runs before any parsing so a
// destructive command is caught even in input the parser would reject.
func FirstForbiddenWord(sql string, denylist []string) string {
	for _, word := range denylist {
		if ContainsWord(sql, word) {
			return strings.ToUpper(word)
		}
	}
	return ""
}

func wordPattern(word string) *regexp.Regexp {
	key := strings.ToUpper(word)

	wordPatternsMu.RLock()
	pattern, ok := wordPatterns[key]
	wordPatternsMu.RUnlock()
	if ok {
		return pattern
	}

	wordPatternsMu.Lock()
	defer wordPatternsMu.Unlock()
	if pattern, ok = wordPatterns[key]; ok {
		return pattern
	}
	pattern = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(key) + `\b`)
	wordPatterns[key] = pattern
	return pattern
}
