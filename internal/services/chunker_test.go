package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextChunker_ShortText(t *testing.T) {
	chunks := NewTextChunker().ChunkText("one paragraph.\n\nanother one.", 100, 10)
	assert.Equal(t, []string{"one paragraph.\n\nanother one."}, chunks)
}

func TestTextChunker_SplitsLongParagraphWithOverlap(t *testing.T) {
	text := strings.Repeat("Sentence number here. ", 10)

	chunks := NewTextChunker().ChunkText(text, 50, 10)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50)
	}

	tail := lastRunes(chunks[0], 10)
	assert.True(t, strings.HasPrefix(chunks[1], tail))
}

func TestTextChunker_Empty(t *testing.T) {
	assert.Empty(t, NewTextChunker().ChunkText("  \n\n  ", 100, 10))
}

func TestSplitIntoSentences(t *testing.T) {
	assert.Equal(t,
		[]string{"First.", "Second?", "Third!", "tail"},
		splitIntoSentences("First. Second? Third! tail"))
}
