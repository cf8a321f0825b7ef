package utils

import "strings"

// Chunk is one fragment of a document produced by SplitText.
// Start and End are rune offsets into the source text before trimming.
type Chunk struct {
	Index   int
	Content string
	Start   int
	End     int
}

// SplitText splits text into overlapping chunks of roughly chunkSize runes.
// When a cut falls inside the text it prefers the last sentence end, then the
// last newline, provided either lies in the back half of the window.
// Whitespace-only fragments are dropped and indices stay contiguous from 0.
func SplitText(text string, chunkSize int, overlap int) []Chunk {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	totalLen := len(runes)

	minStep := (chunkSize - overlap) / 2
	if minStep < 1 {
		minStep = 1
	}

	var chunks []Chunk
	start := 0
	for start < totalLen {
		end := start + chunkSize
		if end < totalLen {
			end = findBoundary(runes, start, end, chunkSize)
		} else {
			end = totalLen
		}

		if content := strings.TrimSpace(string(runes[start:end])); content != "" {
			chunks = append(chunks, Chunk{
				Index:   len(chunks),
				Content: content,
				Start:   start,
				End:     end,
			})
		}

		if end >= totalLen {
			break
		}

		// overlap is measured back from the actual cut, bounded so the
		// window always advances and never skips text
		next := end - overlap
		if next < start+minStep {
			next = start + minStep
		}
		if next > end {
			next = end
		}
		start = next
	}

	return chunks
}

func findBoundary(runes []rune, start, end, chunkSize int) int {
	half := start + chunkSize/2

	for i := end - 1; i > half; i-- {
		if runes[i] == '.' {
			return i + 1
		}
	}
	for i := end - 1; i > half; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return end
}
