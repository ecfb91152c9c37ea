// Package utils contains general helper functions used across the command engine tool.
package utils

import (
	"errors"
	"strings"
	"unicode"
)

const (
	singleQuote     = '\''
	doubleQuote     = '"'
	escapeCharacter = '\\'
	commentPrefix   = "#"
)

// ErrUnterminatedQuote reports a command line with an unbalanced quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// DeduplicateStrings removes duplicate values from a slice while preserving order.
// The first occurrence of each unique value is kept.
func DeduplicateStrings(values []string) []string {
	encounteredValues := make(map[string]struct{})
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := encounteredValues[value]; !exists {
			encounteredValues[value] = struct{}{}
			result = append(result, value)
		}
	}
	return result
}

// IsCommentOrBlank reports whether a script line carries no command.
func IsCommentOrBlank(line string) bool {
	trimmedLine := strings.TrimSpace(line)
	return trimmedLine == EmptyString || strings.HasPrefix(trimmedLine, commentPrefix)
}

// SplitCommandLine splits a line into tokens on whitespace. Single and double quotes group
// words into one token, and a backslash escapes the next character outside single quotes.
func SplitCommandLine(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	tokenStarted := false
	var activeQuote rune
	escaped := false

	for _, character := range line {
		switch {
		case escaped:
			current.WriteRune(character)
			escaped = false
		case character == escapeCharacter && activeQuote != singleQuote:
			escaped = true
			tokenStarted = true
		case activeQuote != 0:
			if character == activeQuote {
				activeQuote = 0
				continue
			}
			current.WriteRune(character)
		case character == singleQuote || character == doubleQuote:
			activeQuote = character
			tokenStarted = true
		case unicode.IsSpace(character):
			if tokenStarted {
				tokens = append(tokens, current.String())
				current.Reset()
				tokenStarted = false
			}
		default:
			current.WriteRune(character)
			tokenStarted = true
		}
	}
	if activeQuote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if tokenStarted {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}
