package sqlparse

import (
	"strings"

	"github.com/sqlward/sqlward/pkg/errors"
)

// DefaultMaxStatementLength bounds how much adversarial input the lexer will
// scan before rejecting.
const DefaultMaxStatementLength = 100_000

// SplitStatements splits raw input into non-empty statement substrings on the
// top-level semicolon, ignoring separators inside quoted literals and inside
// "--" or "/* */" comments. Comment text is carried through unchanged; the
// tokenizer discards it later. Trailing separators and surrounding whitespace
// are tolerated. Input longer than maxLength is rejected rather than scanned.
func SplitStatements(raw string, maxLength int) ([]string, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxStatementLength
	}
	if len(raw) > maxLength {
		return nil, errors.Newf(errors.CodeParseError,
			"statement exceeds maximum length of %d bytes", maxLength)
	}

	var statements []string
	var sb strings.Builder
	inString := false
	var stringChar rune
	runes := []rune(raw)

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if inString {
			sb.WriteRune(ch)
			if ch == stringChar {
				inString = false
			}
			continue
		}
		// Line comment: runs to the newline, which stays in the statement.
		if ch == '-' && i+1 < len(runes) && runes[i+1] == '-' {
			j := i
			for j < len(runes) && runes[j] != '\n' {
				j++
			}
			sb.WriteString(string(runes[i:j]))
			i = j - 1
			continue
		}
		// Block comment: runs to the closing marker, or to the end of input
		// when unterminated.
		if ch == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			j := i + 2
			for j+1 < len(runes) && !(runes[j] == '*' && runes[j+1] == '/') {
				j++
			}
			if j+1 < len(runes) {
				sb.WriteString(string(runes[i : j+2]))
				i = j + 1
			} else {
				sb.WriteString(string(runes[i:]))
				i = len(runes)
			}
			continue
		}
		switch ch {
		case '\'', '"':
			inString = true
			stringChar = ch
			sb.WriteRune(ch)
		case ';':
			if s := strings.TrimSpace(sb.String()); s != "" {
				statements = append(statements, s)
			}
			sb.Reset()
		default:
			sb.WriteRune(ch)
		}
	}

	if inString {
		return nil, errors.New(errors.CodeParseError, "unterminated string literal")
	}
	if s := strings.TrimSpace(sb.String()); s != "" {
		statements = append(statements, s)
	}

	return statements, nil
}
