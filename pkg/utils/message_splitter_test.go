package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage_ShortTextUnchanged(t *testing.T) {
	text := "🎯 **Ready for your questions!**"

	segments := SplitMessage(text, DefaultMessageLimit, DefaultMessageBuffer)

	require.Len(t, segments, 1)
	assert.Equal(t, text, segments[0])
}

func TestSplitMessage_Empty(t *testing.T) {
	assert.Empty(t, SplitMessage("", 2000, 100))
	assert.Empty(t, SplitMessage(" \n\n ", 2000, 100))
}

func TestSplitMessage_UnbrokenTextOneOverLimit(t *testing.T) {
	text := strings.Repeat("x", 2001)

	segments := SplitMessage(text, 2000, 100)

	require.Len(t, segments, 2)
	assert.Equal(t, 2000, utf8.RuneCountInString(segments[0]))
	assert.Equal(t, 1, utf8.RuneCountInString(segments[1]))
}

func TestSplitMessage_PacksParagraphs(t *testing.T) {
	paragraph := strings.Repeat("p", 400)
	text := strings.Join([]string{paragraph, paragraph, paragraph, paragraph, paragraph, paragraph}, "\n\n")

	segments := SplitMessage(text, 1000, 100)

	require.Len(t, segments, 3)
	for _, s := range segments {
		assert.Equal(t, paragraph+"\n\n"+paragraph, s)
	}
}

func TestSplitMessage_SplitsLongParagraphOnSentences(t *testing.T) {
	sentence := strings.Repeat("s", 90) + "."
	var parts []string
	for i := 0; i < 30; i++ {
		parts = append(parts, sentence)
	}
	text := strings.Join(parts, " ")

	segments := SplitMessage(text, 500, 50)

	require.Greater(t, len(segments), 1)
	for _, s := range segments {
		assert.LessOrEqual(t, utf8.RuneCountInString(s), 500)
		assert.True(t, strings.HasSuffix(s, "."), "segment should end on a sentence: %q", s)
	}
}

func TestSplitMessage_BoundsHold(t *testing.T) {
	inputs := []string{
		strings.Repeat("word ", 2000),
		strings.Repeat("Sentence one. ", 400) + "\n\n" + strings.Repeat("z", 4500),
		strings.Repeat("🦠", 4100),
		strings.Repeat("para\n\n", 900),
	}

	for _, in := range inputs {
		segments := SplitMessage(in, 2000, 100)
		require.NotEmpty(t, segments)
		for _, s := range segments {
			assert.NotEmpty(t, strings.TrimSpace(s))
			assert.LessOrEqual(t, utf8.RuneCountInString(s), 2000)
		}
	}
}
