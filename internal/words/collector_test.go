package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(l *LineState) []string {
	out := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		out = append(out, w.Text(l.Line))
	}
	return out
}

func TestCollector_Collect(t *testing.T) {
	c := NewCollector(CollectorConfig{})

	tests := []struct {
		name      string
		line      string
		cursor    uint
		commands  int
		lastWords []string
	}{
		{"empty line", "", 0, 1, []string{""}},
		{"single word", "git", 3, 1, []string{"git"}},
		{"trailing space adds empty end word", "git ", 4, 1, []string{"git", ""}},
		{"partial argument", "git chec", 8, 1, []string{"git", "chec"}},
		{"text after cursor is ignored", "git checkout main", 8, 1, []string{"git", "chec"}},
		{"pipe starts new command", "ls | gre", 8, 2, []string{"gre"}},
		{"double ampersand", "make && ./run", 13, 2, []string{"./run"}},
		{"semicolon then space", "a; ", 3, 2, []string{""}},
		{"quoted word keeps spaces", `cat "my file`, 12, 1, []string{"cat", "my file"}},
		{"closed quote stripped", `cat "a b" `, 10, 1, []string{"cat", "a b", ""}},
		{"flag value split", "cmd --out=fi", 12, 1, []string{"cmd", "--out=", "fi"}},
		{"colon flag split", "cmd -o:x", 8, 1, []string{"cmd", "-o:", "x"}},
		{"slash flag split", "dir /o:na", 9, 1, []string{"dir", "/o:", "na"}},
		{"slash flag keeps equals", "cat /a=b", 8, 1, []string{"cat", "/a=b"}},
		{"slash command word not split", "/bin/x:y", 8, 1, []string{"/bin/x:y"}},
		{"redirect target not split", "cmd > /o:x", 10, 1, []string{"cmd", "/o:x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := c.Collect(tt.line, tt.cursor)
			require.Len(t, states, tt.commands)
			assert.Equal(t, tt.lastWords, texts(states.Last()))
		})
	}
}

func TestCollector_CommandAndRedirectFlags(t *testing.T) {
	c := NewCollector(CollectorConfig{})

	states := c.Collect("> out.txt echo hi", 17)
	require.Len(t, states, 1)
	ws := states.Last().Words
	require.Len(t, ws, 3)

	assert.True(t, ws[0].IsRedirArg)
	assert.False(t, ws[0].CommandWord)
	assert.True(t, ws[1].CommandWord)
	assert.Equal(t, "echo", states.Last().CommandWordText())
}

func TestCollector_EndWordAfterRedirect(t *testing.T) {
	c := NewCollector(CollectorConfig{})

	states := c.Collect("cat >", 5)
	end := states.Last().EndWord()
	assert.True(t, end.IsRedirArg)
	assert.Equal(t, uint(5), end.Offset)
	assert.Equal(t, uint(0), end.Length)
}

func TestCollector_QuotedEndWord(t *testing.T) {
	c := NewCollector(CollectorConfig{})

	states := c.Collect(`ls "dir`, 7)
	end := states.Last().EndWord()
	assert.True(t, end.Quoted)
	assert.Equal(t, uint(4), end.Offset)
	assert.Equal(t, "dir", states.Last().EndWordText())
}

func TestCollector_CustomQuotePair(t *testing.T) {
	c := NewCollector(CollectorConfig{QuotePair: "[]"})
	assert.Equal(t, byte(']'), c.CloseQuote())

	states := c.Collect("x [a b] ", 8)
	assert.Equal(t, []string{"x", "a b", ""}, texts(states.Last()))
}

func TestLineStates_Words(t *testing.T) {
	c := NewCollector(CollectorConfig{})

	states := c.Collect("a b | c", 7)
	all := states.Words()
	require.Len(t, all, 3)
	assert.Equal(t, uint(6), all[2].Offset)
}

func TestLineState_Args(t *testing.T) {
	c := NewCollector(CollectorConfig{})

	states := c.Collect("git checkout main", 10)
	assert.Equal(t, []string{"git", "checko"}, states.Last().Args())
	assert.Equal(t, "che", states.Last().WordText(1)[:3])
	assert.Equal(t, "", states.Last().WordText(5))
}

func TestApplyBreak(t *testing.T) {
	c := NewCollector(CollectorConfig{})

	tests := []struct {
		name       string
		line       string
		info       BreakInfo
		wantWords  int
		wantOffset uint
		wantLength uint
	}{
		{"default keeps nothing", "git chec", BreakInfo{}, 2, 4, 0},
		{"keep directory part", "ls src/ma", BreakInfo{Keep: 4}, 2, 3, 4},
		{"keep longer than word", "ls ab", BreakInfo{Keep: 10}, 2, 3, 2},
		{"truncate splits end word", "x abc:de", BreakInfo{Truncate: 4, Keep: 10}, 3, 6, 2},
		{"truncate beyond word ignored", "x ab", BreakInfo{Truncate: 5, Keep: 1}, 2, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := c.Collect(tt.line, uint(len(tt.line))).Last()
			ApplyBreak(l, tt.info)
			require.Len(t, l.Words, tt.wantWords)
			end := l.EndWord()
			assert.Equal(t, tt.wantOffset, end.Offset)
			assert.Equal(t, tt.wantLength, end.Length)
		})
	}
}
