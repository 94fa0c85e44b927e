package utils

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	assert.Nil(t, SplitText("   ", 10, 2))
	assert.Equal(t, []string{"hello"}, SplitText("  hello ", 10, 2))
}

func TestSplitTextBreaksAtWhitespace(t *testing.T) {
	chunks := SplitText("alpha beta gamma delta epsilon", 12, 0)

	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 12)
		assert.Equal(t, strings.TrimSpace(c), c)
	}
	assert.Equal(t, "alpha beta gamma delta epsilon", strings.Join(chunks, " "))
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("x", 25)
	chunks := SplitText(text, 10, 3)

	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 4)}, chunks)
}

func TestSplitTextCountsRunes(t *testing.T) {
	chunks := SplitText(strings.Repeat("é", 15), 10, 0)

	assert.Len(t, chunks, 2)
	assert.Equal(t, 10, utf8.RuneCountInString(chunks[0]))
}

func TestSplitTextTinyChunksWithSpaces(t *testing.T) {
	for _, size := range []int{1, 2} {
		done := make(chan []string, 1)
		go func() { done <- SplitText("a b", size, 0) }()

		select {
		case chunks := <-done:
			assert.Equal(t, []string{"a", "b"}, chunks, "chunk size %d", size)
		case <-time.After(2 * time.Second):
			t.Fatalf("SplitText with chunk size %d did not return", size)
		}
	}
}
