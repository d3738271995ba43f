package chat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func collectChunks(content string) []string {
	var chunks []string
	emitSmoothed(content, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	return chunks
}

func TestEmitSmoothed_ShortFragmentPassesThrough(t *testing.T) {
	chunks := collectChunks("здравей")
	assert.Equal(t, []string{"здравей"}, chunks)
}

func TestEmitSmoothed_ThresholdCountsRunesNotBytes(t *testing.T) {
	// Ten Cyrillic runes, twenty bytes. Must pass through as one chunk.
	content := "абвгдежзий"
	assert.Equal(t, 10, utf8.RuneCountInString(content))
	assert.Equal(t, []string{content}, collectChunks(content))
}

func TestEmitSmoothed_LongFragmentSplitsOnWhitespace(t *testing.T) {
	content := "това е едно доста по-дълго съобщение от модела"
	chunks := collectChunks(content)

	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks[:len(chunks)-1] {
		words := 0
		for _, token := range splitKeepingWhitespace(chunk) {
			if !isWhitespace(token) {
				words++
			}
		}
		assert.LessOrEqual(t, words, maxBufferWords)
	}
}

func TestEmitSmoothed_ConcatenationReproducesInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain sentence", "the quick brown fox jumps over the lazy dog"},
		{"bulgarian text", "Здравей! Как мога да ти помогна днес с нещо интересно?"},
		{"leading and trailing space", "  padded   content with    gaps  "},
		{"newlines preserved", "first line\nsecond line\n\nthird paragraph here now"},
		{"single long word", "Непротивоконституционствувателствувайте"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.content, strings.Join(collectChunks(tt.content), ""))
		})
	}
}

func TestSplitKeepingWhitespace(t *testing.T) {
	tokens := splitKeepingWhitespace("a  b\tc")
	assert.Equal(t, []string{"a", "  ", "b", "\t", "c"}, tokens)
}

func TestSplitKeepingWhitespace_Empty(t *testing.T) {
	assert.Empty(t, splitKeepingWhitespace(""))
}
