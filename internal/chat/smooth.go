package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Word-group buffering thresholds. Fragments at or under smoothThreshold
// runes pass through untouched; longer ones are re-emitted in small word
// groups so the client sees a steadier typing rate.
const (
	smoothThreshold = 10
	maxBufferRunes  = 10
	maxBufferWords  = 5
)

// emitSmoothed forwards content to onChunk, re-chunking large fragments on
// whitespace boundaries. Concatenating every emitted chunk always reproduces
// content exactly.
func emitSmoothed(content string, onChunk func(string)) {
	if utf8.RuneCountInString(content) <= smoothThreshold {
		onChunk(content)
		return
	}

	tokens := splitKeepingWhitespace(content)

	var buffer strings.Builder
	words := 0
	for i, token := range tokens {
		buffer.WriteString(token)
		if !isWhitespace(token) {
			words++
		}
		if utf8.RuneCountInString(buffer.String()) >= maxBufferRunes || words >= maxBufferWords || i == len(tokens)-1 {
			onChunk(buffer.String())
			buffer.Reset()
			words = 0
		}
	}
}

// splitKeepingWhitespace splits content into alternating word and whitespace
// runs, preserving every byte.
func splitKeepingWhitespace(content string) []string {
	var tokens []string
	var current strings.Builder
	var inSpace bool

	for i, r := range content {
		space := unicode.IsSpace(r)
		if i > 0 && space != inSpace {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		inSpace = space
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isWhitespace(token string) bool {
	return strings.TrimSpace(token) == ""
}
