// Package words splits an edit line into commands and words and describes
// the resulting per-command line states handed to match generators.
package words

// Word is a span of the line buffer. Offsets and lengths are byte based.
type Word struct {
	Offset uint
	Length uint

	// Quoted is set when the word started with an opening quote. The quote
	// itself is excluded from the span.
	Quoted bool

	// CommandWord marks the first non-redirection word of a command.
	CommandWord bool

	// IsRedirArg marks a word that follows a redirection operator.
	IsRedirArg bool

	// Delim is the delimiter that preceded the word, or 0 at line start.
	Delim byte
}

// End returns the offset one past the last byte of the word.
func (w Word) End() uint {
	return w.Offset + w.Length
}

// Text returns the word's bytes from line.
func (w Word) Text(line string) string {
	return slice(line, w.Offset, w.End())
}

// BreakInfo describes how a generator wants the end word adjusted before
// the change key is computed.
//
// When Truncate is non-zero the end word is split at Offset+Truncate and the
// right part becomes the new end word. The end word's length is then clamped
// to Keep. Only the kept prefix takes part in deciding whether matches must be
// regenerated, so {0, 0} means "the same matches serve any word typed here".
type BreakInfo struct {
	Truncate uint
	Keep     uint
}

// LineState is a view of one command in the line.
type LineState struct {
	Line   string
	Cursor uint

	// CommandOffset is the byte offset at which the command begins.
	CommandOffset uint

	// Words holds the words of this command only.
	Words []Word
}

// EndWord returns the last word of the command. Collected line states always
// contain at least one word.
func (l *LineState) EndWord() Word {
	if len(l.Words) == 0 {
		return Word{Offset: l.Cursor}
	}
	return l.Words[len(l.Words)-1]
}

// EndWordText returns the text of the end word up to the cursor.
func (l *LineState) EndWordText() string {
	end := l.EndWord()
	return slice(l.Line, end.Offset, l.Cursor)
}

// WordText returns the text of the i'th word.
func (l *LineState) WordText(i int) string {
	if i < 0 || i >= len(l.Words) {
		return ""
	}
	return l.Words[i].Text(l.Line)
}

// CommandWordText returns the text of the command word, or an empty string
// when the command has none yet.
func (l *LineState) CommandWordText() string {
	for i, w := range l.Words {
		if w.CommandWord {
			if i == len(l.Words)-1 {
				return slice(l.Line, w.Offset, l.Cursor)
			}
			return w.Text(l.Line)
		}
	}
	return ""
}

// Args returns the text of every word in the command, end word truncated at
// the cursor.
func (l *LineState) Args() []string {
	args := make([]string, 0, len(l.Words))
	for i, w := range l.Words {
		if i == len(l.Words)-1 {
			args = append(args, slice(l.Line, w.Offset, l.Cursor))
			continue
		}
		args = append(args, w.Text(l.Line))
	}
	return args
}

// LineStates holds one state per command, in line order. The last state is
// the command containing the cursor.
type LineStates []*LineState

// Last returns the state of the command under the cursor.
func (ls LineStates) Last() *LineState {
	if len(ls) == 0 {
		return &LineState{}
	}
	return ls[len(ls)-1]
}

func slice(s string, begin, end uint) string {
	n := uint(len(s))
	if begin > n {
		begin = n
	}
	if end > n {
		end = n
	}
	if end < begin {
		return ""
	}
	return s[begin:end]
}
