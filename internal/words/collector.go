package words

import "strings"

const (
	defaultWordDelims    = " \t"
	defaultCommandDelims = "&|;"
	defaultRedirChars    = "<>"
	defaultQuotePair     = `"`
)

// CollectorConfig holds configuration for creating a Collector.
type CollectorConfig struct {
	// WordDelims separate words. Defaults to space and tab.
	WordDelims string

	// CommandDelims separate commands. Defaults to "&|;".
	CommandDelims string

	// QuotePair holds the opening and closing quote characters. A single
	// character is used for both. Defaults to a double quote.
	QuotePair string
}

// Collector splits a line into commands and words.
type Collector struct {
	wordDelims    string
	commandDelims string
	openQuote     byte
	closeQuote    byte
}

// NewCollector creates a new Collector with the given configuration.
func NewCollector(config CollectorConfig) *Collector {
	wordDelims := config.WordDelims
	if wordDelims == "" {
		wordDelims = defaultWordDelims
	}
	commandDelims := config.CommandDelims
	if commandDelims == "" {
		commandDelims = defaultCommandDelims
	}
	quotePair := config.QuotePair
	if quotePair == "" {
		quotePair = defaultQuotePair
	}

	c := &Collector{
		wordDelims:    wordDelims,
		commandDelims: commandDelims,
		openQuote:     quotePair[0],
		closeQuote:    quotePair[0],
	}
	if len(quotePair) > 1 {
		c.closeQuote = quotePair[1]
	}
	return c
}

// CloseQuote returns the closing quote character.
func (c *Collector) CloseQuote() byte {
	return c.closeQuote
}

// IsWordDelim reports whether ch separates words.
func (c *Collector) IsWordDelim(ch byte) bool {
	return strings.IndexByte(c.wordDelims, ch) >= 0
}

// NeedsQuote reports whether s contains a character that would split it
// into several words.
func (c *Collector) NeedsQuote(s string) bool {
	return strings.ContainsAny(s, c.wordDelims+c.commandDelims+defaultRedirChars)
}

// Collect splits line up to cursor into commands. Text after the cursor is
// ignored. The last command always ends with an end word; it is empty when
// the cursor follows a delimiter.
func (c *Collector) Collect(line string, cursor uint) LineStates {
	if cursor > uint(len(line)) {
		cursor = uint(len(line))
	}

	var (
		states     LineStates
		current    []Word
		cmdStart   uint
		wordStart  = -1
		delim      byte
		inQuote    bool
		redirNext  bool
		pushedWord bool
	)

	flush := func(end uint) {
		if wordStart < 0 {
			return
		}
		current = append(current, Word{
			Offset:     uint(wordStart),
			Length:     end - uint(wordStart),
			Delim:      delim,
			IsRedirArg: redirNext,
		})
		redirNext = false
		wordStart = -1
		pushedWord = true
	}

	for i := uint(0); i < cursor; i++ {
		ch := line[i]

		if inQuote {
			if ch == c.closeQuote {
				inQuote = false
			}
			continue
		}
		if ch == c.openQuote {
			inQuote = true
			if wordStart < 0 {
				wordStart = int(i)
			}
			continue
		}

		switch {
		case strings.IndexByte(c.commandDelims, ch) >= 0:
			flush(i)
			if pushedWord {
				states = append(states, c.finish(line, cursor, cmdStart, current))
			}
			current = nil
			pushedWord = false
			redirNext = false
			cmdStart = i + 1
			delim = ch
		case strings.IndexByte(defaultRedirChars, ch) >= 0:
			flush(i)
			redirNext = true
			delim = ch
		case strings.IndexByte(c.wordDelims, ch) >= 0:
			flush(i)
			delim = ch
		default:
			if wordStart < 0 {
				wordStart = int(i)
			}
		}
	}

	if wordStart >= 0 {
		flush(cursor)
	} else {
		current = append(current, Word{Offset: cursor, Delim: delim, IsRedirArg: redirNext})
	}

	states = append(states, c.finish(line, cursor, cmdStart, current))
	return states
}

func (c *Collector) finish(line string, cursor, cmdStart uint, ws []Word) *LineState {
	for i := range ws {
		c.adjustQuotes(line, &ws[i])
	}
	ws = c.splitFlags(line, ws)

	for i := range ws {
		if !ws[i].IsRedirArg {
			ws[i].CommandWord = true
			break
		}
	}

	return &LineState{
		Line:          line,
		Cursor:        cursor,
		CommandOffset: cmdStart,
		Words:         ws,
	}
}

func (c *Collector) adjustQuotes(line string, w *Word) {
	if w.Length == 0 || line[w.Offset] != c.openQuote {
		return
	}
	endQuoted := w.Length > 1 && line[w.End()-1] == c.closeQuote
	w.Offset++
	w.Length--
	if endQuoted {
		w.Length--
	}
	w.Quoted = true
}

// splitFlags splits "--name=value", "-x:value" and "/x:value" style
// arguments so that the value becomes its own word. Slash flags split only at
// ":" so that paths keep their "=".
func (c *Collector) splitFlags(line string, ws []Word) []Word {
	out := make([]Word, 0, len(ws))
	for i, w := range ws {
		if i == 0 || w.Quoted || w.IsRedirArg || w.Length < 2 {
			out = append(out, w)
			continue
		}
		var seps string
		switch line[w.Offset] {
		case '-':
			seps = "=:"
		case '/':
			seps = ":"
		default:
			out = append(out, w)
			continue
		}
		text := w.Text(line)
		sep := strings.IndexAny(text, seps)
		if sep < 0 {
			out = append(out, w)
			continue
		}
		left := w
		left.Length = uint(sep) + 1
		right := Word{
			Offset: left.End(),
			Length: w.Length - left.Length,
			Delim:  line[left.End()-1],
		}
		out = append(out, left, right)
	}
	return out
}

// Words flattens the words of every command in line order.
func (ls LineStates) Words() []Word {
	var all []Word
	for _, l := range ls {
		all = append(all, l.Words...)
	}
	return all
}

// ApplyBreak adjusts the end word of l according to info.
func ApplyBreak(l *LineState, info BreakInfo) {
	if len(l.Words) == 0 {
		return
	}
	end := &l.Words[len(l.Words)-1]
	if info.Truncate > 0 && info.Truncate < end.Length {
		next := Word{
			Offset: end.Offset + info.Truncate,
			Length: end.Length - info.Truncate,
			Delim:  l.Line[end.Offset+info.Truncate-1],
		}
		end.Length = info.Truncate
		l.Words = append(l.Words, next)
		end = &l.Words[len(l.Words)-1]
	}
	end.Length = min(end.Length, info.Keep)
}
