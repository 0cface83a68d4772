package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/atinylittleshell/linecomp/internal/matches"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/rivo/uniseg"
)

// Colors used by the default styles.
const (
	ColorYellow = lipgloss.Color("11")
	ColorGray   = lipgloss.Color("8")
	ColorPink   = lipgloss.Color("205")
)

// Styles holds the styles the view renders with.
type Styles struct {
	Prompt     lipgloss.Style
	Text       lipgloss.Style
	Cursor     lipgloss.Style
	Suggestion lipgloss.Style
	Match      lipgloss.Style
	Directory  lipgloss.Style
	Status     lipgloss.Style
	Spinner    lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Prompt:     lipgloss.NewStyle().Foreground(ColorYellow),
		Text:       lipgloss.NewStyle(),
		Cursor:     lipgloss.NewStyle().Reverse(true),
		Suggestion: lipgloss.NewStyle().Foreground(ColorGray),
		Match:      lipgloss.NewStyle(),
		Directory:  lipgloss.NewStyle().Bold(true),
		Status:     lipgloss.NewStyle().Foreground(ColorGray),
		Spinner:    lipgloss.NewStyle().Foreground(ColorPink),
	}
}

// View implements tea.Model.
func (m Model) View() string {
	prompt := m.styles.Prompt.Render(m.prompt)
	text := m.editor.Buffer().Text()

	if m.result.Type != ResultNone {
		return prompt + m.styles.Text.Render(text) + "\n"
	}

	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString(m.renderLine(text, m.editor.Buffer().Cursor()))

	if m.suggester != nil && m.suggester.Pending() {
		sb.WriteString(" ")
		sb.WriteString(m.spinner.View())
	}

	if m.edit != nil && m.edit.Listing() {
		indent := strings.Repeat(" ", ansi.PrintableRuneWidth(prompt))
		for _, row := range m.renderMatches(m.width - len(indent)) {
			sb.WriteString("\n")
			sb.WriteString(indent)
			sb.WriteString(row)
		}
	}

	return sb.String()
}

// renderLine draws text with the cursor at byte offset cursor, followed by
// the inline suggestion when the cursor is at the end.
func (m Model) renderLine(text string, cursor int) string {
	cursor = min(max(cursor, 0), len(text))

	var sb strings.Builder
	sb.WriteString(m.styles.Text.Render(text[:cursor]))

	if cursor < len(text) {
		_, size := utf8.DecodeRuneInString(text[cursor:])
		sb.WriteString(m.styles.Cursor.Render(text[cursor : cursor+size]))
		sb.WriteString(m.styles.Text.Render(text[cursor+size:]))
		return sb.String()
	}

	ghost := ""
	if m.suggester != nil {
		ghost = m.suggester.Remainder(text)
	}
	if ghost == "" {
		sb.WriteString(m.styles.Cursor.Render(" "))
		return sb.String()
	}

	_, size := utf8.DecodeRuneInString(ghost)
	sb.WriteString(m.styles.Cursor.
		Foreground(m.styles.Suggestion.GetForeground()).
		Render(ghost[:size]))
	sb.WriteString(m.styles.Suggestion.Render(ghost[size:]))
	return sb.String()
}

// renderMatches lays the selected matches out in columns that fit width,
// followed by a count when not all of them are shown.
func (m Model) renderMatches(width int) []string {
	store := m.editor.Matches()
	n := store.Len()
	if n == 0 {
		return nil
	}
	if width <= 0 {
		width = 80
	}

	shown := min(n, m.maxMatches)
	colWidth := 0
	for i := 0; i < shown; i++ {
		colWidth = max(colWidth, uniseg.StringWidth(store.Match(i)))
	}
	colWidth = min(colWidth+2, width)
	cols := max(width/colWidth, 1)

	var rows []string
	var row strings.Builder
	for i := 0; i < shown; i++ {
		match := store.Match(i)
		if limit := max(colWidth-2, 1); uniseg.StringWidth(match) > limit {
			match = truncate.StringWithTail(match, uint(limit), "…")
		}
		style := m.styles.Match
		if store.MatchType(i) == matches.TypeDir {
			style = m.styles.Directory
		}
		row.WriteString(style.Render(match))
		if (i+1)%cols == 0 || i == shown-1 {
			rows = append(rows, row.String())
			row.Reset()
			continue
		}
		row.WriteString(strings.Repeat(" ", max(colWidth-uniseg.StringWidth(match), 1)))
	}

	if shown < n {
		rows = append(rows, m.styles.Status.Render(
			"… "+humanize.Comma(int64(n-shown))+" more of "+humanize.Comma(int64(n))+" matches"))
	}
	return rows
}
