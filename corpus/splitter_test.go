package corpus

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyText(t *testing.T) {
	assert.Empty(t, Split("", 1000, 100))
	assert.Empty(t, Split("   \n  ", 1000, 100))
}

func TestSplitSingleWindow(t *testing.T) {
	chunks := Split("short text", 1000, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitOverlappingWindows(t *testing.T) {
	text := strings.Repeat("a", 2500)
	chunks := Split(text, 1000, 100)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	// Final window holds whatever is left after the second advance.
	assert.Len(t, chunks[2], 700)
}

func TestSplitAdvanceClampsWhenOverlapTooLarge(t *testing.T) {
	chunks := Split("abcdefgh", 4, 5)

	require.Len(t, chunks, 2)
	assert.Equal(t, "abcd", chunks[0])
	assert.Equal(t, "efgh", chunks[1])
}

func TestSplitDropsWhitespaceWindows(t *testing.T) {
	chunks := Split("aa      bb", 3, 0)

	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"aa", "b", "b"}, chunks)
}

func TestSplitCountsRunesNotBytes(t *testing.T) {
	chunks := Split("日本語テキスト母", 3, 1)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 3)
	}
	assert.Equal(t, "日本語", chunks[0])
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox ", 200)
	assert.Equal(t, Split(text, 150, 30), Split(text, 150, 30))
}

func TestSplitInvalidChunkSize(t *testing.T) {
	assert.Empty(t, Split("anything", 0, 0))
	assert.Empty(t, Split("anything", -5, 2))
}
