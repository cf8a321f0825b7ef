package utils

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultMessageLimit  = 2000
	DefaultMessageBuffer = 100
)

// SplitMessage breaks text into segments of at most limit runes so each can be
// delivered by a transport with a hard message cap. Paragraphs are packed
// together while they stay under limit-buffer; an oversized paragraph is split
// into sentences and, as a last resort, hard-cut at limit.
func SplitMessage(text string, limit int, buffer int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	soft := limit - buffer
	if buffer < 0 || soft <= 0 {
		soft = limit
	}

	b := &segmentBuilder{soft: soft}
	for _, paragraph := range strings.Split(text, "\n\n") {
		if utf8.RuneCountInString(paragraph) <= limit {
			b.add(paragraph, "\n\n")
			continue
		}

		b.flush()
		for _, sentence := range splitSentences(paragraph) {
			if utf8.RuneCountInString(sentence) <= limit {
				b.add(sentence, " ")
				continue
			}
			b.flush()
			for _, piece := range hardCut(sentence, limit) {
				b.add(piece, "")
				b.flush()
			}
		}
		b.flush()
	}
	b.flush()

	return b.segments
}

type segmentBuilder struct {
	soft     int
	current  string
	segments []string
}

func (b *segmentBuilder) add(piece, sep string) {
	if b.current == "" {
		b.current = piece
		return
	}
	joined := utf8.RuneCountInString(b.current) + utf8.RuneCountInString(sep) + utf8.RuneCountInString(piece)
	if joined <= b.soft {
		b.current += sep + piece
		return
	}
	b.flush()
	b.current = piece
}

func (b *segmentBuilder) flush() {
	if s := strings.TrimSpace(b.current); s != "" {
		b.segments = append(b.segments, s)
	}
	b.current = ""
}

func splitSentences(paragraph string) []string {
	parts := strings.SplitAfter(paragraph, ". ")
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimRight(p, " "); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func hardCut(s string, limit int) []string {
	runes := []rune(s)
	var pieces []string
	for len(runes) > limit {
		pieces = append(pieces, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}
