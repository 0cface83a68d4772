package session

import "sync/atomic"

// Key locates the word being completed. Two ticks with the same key (and
// the same text under it) share their generated matches.
type Key struct {
	WordIndex  uint
	WordOffset uint
	WordLength uint
	CursorPos  uint
}

// resetKey never compares equal to a key computed from a line.
var resetKey = Key{
	WordIndex:  ^uint(0),
	WordOffset: ^uint(0),
	WordLength: ^uint(0),
	CursorPos:  ^uint(0),
}

// IsKeySame reports whether prev (over prevText) and next (over nextText)
// address the same word. Integer fields are compared before any bytes.
func IsKeySame(prev Key, prevText string, next Key, nextText string, compareCursor bool) bool {
	if prev.WordIndex != next.WordIndex {
		return false
	}
	if prev.WordLength != next.WordLength {
		return false
	}
	if prev.WordOffset != next.WordOffset {
		return false
	}
	if compareCursor && prev.CursorPos != next.CursorPos {
		return false
	}

	a, ok := span(prevText, prev.WordOffset, prev.WordLength)
	if !ok {
		return false
	}
	b, ok := span(nextText, next.WordOffset, next.WordLength)
	if !ok {
		return false
	}
	return a == b
}

func span(s string, offset, length uint) (string, bool) {
	end := offset + length
	if end < offset || end > uint(len(s)) {
		return "", false
	}
	return s[offset:end], true
}

// generationID is shared by every editor in the process so that an id is
// never reused, even across lines.
var generationID atomic.Uint32

func nextGenerationID() uint32 {
	for {
		if id := generationID.Add(1); id != 0 {
			return id
		}
	}
}
