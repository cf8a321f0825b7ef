package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_ShortTextIsSingleChunk(t *testing.T) {
	chunks := SplitText("  Bacteroides dominate the sample.  ", 1000, 200)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "Bacteroides dominate the sample.", chunks[0].Content)
}

func TestSplitText_EmptyAndWhitespace(t *testing.T) {
	assert.Empty(t, SplitText("", 100, 10))
	assert.Empty(t, SplitText("   \n\n\t  ", 100, 10))
}

func TestSplitText_TinyWindowTerminates(t *testing.T) {
	chunks := SplitText("A. B. C.", 4, 1)

	require.NotEmpty(t, chunks)
	assert.Equal(t, "C.", chunks[len(chunks)-1].Content)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.NotEmpty(t, strings.TrimSpace(c.Content))
	}
}

func TestSplitText_PrefersSentenceBoundary(t *testing.T) {
	text := strings.Repeat("a", 70) + "." + strings.Repeat("b", 60)

	chunks := SplitText(text, 100, 10)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0].Content, "."), "first chunk should end at the sentence: %q", chunks[0].Content)
	assert.Equal(t, 71, chunks[0].End)
}

func TestSplitText_FallsBackToNewline(t *testing.T) {
	text := strings.Repeat("a", 80) + "\n" + strings.Repeat("b", 60)

	chunks := SplitText(text, 100, 10)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, strings.Repeat("a", 80), chunks[0].Content)
}

func TestSplitText_IgnoresBoundaryInFrontHalf(t *testing.T) {
	text := "ab." + strings.Repeat("c", 200)

	chunks := SplitText(text, 100, 0)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 100, chunks[0].End)
}

func TestSplitText_CoversEveryRune(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 120; i++ {
		sb.WriteString("Shannon diversity index is within range for this cohort")
		if i%3 == 0 {
			sb.WriteString(".\n")
		} else {
			sb.WriteString(". ")
		}
	}
	text := sb.String()
	runes := []rune(text)

	tests := []struct {
		size    int
		overlap int
	}{
		{1000, 200},
		{300, 50},
		{64, 63},
		{10, 0},
		{7, 3},
	}

	for _, tt := range tests {
		chunks := SplitText(text, tt.size, tt.overlap)
		require.NotEmpty(t, chunks)

		covered := make([]bool, len(runes))
		prevStart := -1
		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
			assert.Greater(t, c.Start, prevStart, "window must advance")
			assert.LessOrEqual(t, c.End-c.Start, tt.size)
			prevStart = c.Start
			for p := c.Start; p < c.End; p++ {
				covered[p] = true
			}
		}
		for p, ok := range covered {
			if !ok && strings.TrimSpace(string(runes[p])) != "" {
				t.Fatalf("size=%d overlap=%d: rune %d (%q) not covered", tt.size, tt.overlap, p, runes[p])
			}
		}
	}
}

// The next window starts at the actual cut minus the overlap, so an early
// sentence cut never leaves a gap before the following chunk.
func TestSplitText_EarlyCutLeavesNoGap(t *testing.T) {
	text := strings.Repeat("a", 60) + "." + strings.Repeat("b", 100)

	chunks := SplitText(text, 100, 10)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 61, chunks[0].End)
	assert.Equal(t, 51, chunks[1].Start)
	assert.Less(t, chunks[1].Start, chunks[0].End)
}

func TestSplitText_OverlapIsRespected(t *testing.T) {
	text := strings.Repeat("x", 1000)

	chunks := SplitText(text, 100, 20)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, 80, chunks[1].Start)
	assert.Equal(t, 20, chunks[0].End-chunks[1].Start)
}

func TestSplitText_MultiByteRunes(t *testing.T) {
	text := strings.Repeat("🧬", 250)

	chunks := SplitText(text, 100, 10)

	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), 100)
	}
}
