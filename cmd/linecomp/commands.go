package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinylittleshell/linecomp/internal/history"
	"github.com/atinylittleshell/linecomp/internal/styles"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newRootCmd() *cobra.Command {
	var opts appOptions

	cmd := &cobra.Command{
		Use:   "linecomp",
		Short: "linecomp - a line editor with incremental completion",
		Long: `linecomp reads command lines with inline suggestions and tab
completion, and runs them with a bash-compatible interpreter.

When stdin is not a terminal, it is run as a script instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return runShell(ctx, a)
			}
			return runScript(ctx, a, cmd.InOrStdin())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: ~/.linecomp/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logPath, "log-file", "", "Path to log file (default: ~/.linecomp/linecomp.log)")

	cmd.AddCommand(newCompleteCmd(&opts))
	cmd.AddCommand(newHistoryCmd(&opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newCompleteCmd(opts *appOptions) *cobra.Command {
	var cursor int
	var withSuggestion bool

	cmd := &cobra.Command{
		Use:   "complete <line>",
		Short: "Print the matches for a line",
		Long: `Print the matches for the word at the cursor, one per line.

The cursor defaults to the end of the line. With --suggest the inline
suggestion is printed first, prefixed by "> ".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{
				configPath: opts.configPath,
				logPath:    opts.logPath,
				noHistory:  !withSuggestion,
			})
			if err != nil {
				return err
			}
			defer a.Close()

			line := args[0]
			if !cmd.Flags().Changed("cursor") {
				cursor = len(line)
			}
			return completeLine(a, line, cursor, withSuggestion, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&cursor, "cursor", 0, "Cursor position as a byte offset into the line")
	cmd.Flags().BoolVar(&withSuggestion, "suggest", false, "Also print the inline suggestion")
	return cmd
}

// completeLine runs one pass of the match pipeline over line and prints the
// result. Matches are generated on the calling goroutine.
func completeLine(a *app, line string, cursor int, withSuggestion bool, out io.Writer) error {
	if cursor < 0 || cursor > len(line) {
		return fmt.Errorf("cursor %d is outside the line", cursor)
	}

	settings := *a.cfg
	settings.Autosuggest.Enable = withSuggestion
	settings.Autosuggest.Async = false

	parts := a.newEditor(&settings)
	defer parts.Close()

	e := parts.editor
	e.BeginLine()
	e.Buffer().Insert(line)
	e.Buffer().SetCursor(cursor)
	e.UpdateInternal()
	e.UpdateMatches()

	if withSuggestion {
		fmt.Fprintf(out, "> %s\n", parts.suggester.Suggestion())
	}
	store := e.Matches()
	for i := 0; i < store.Len(); i++ {
		fmt.Fprintln(out, store.Match(i))
	}

	e.EndLine()
	return nil
}

func newHistoryCmd(opts *appOptions) *cobra.Command {
	var limit int
	var here bool
	var reset bool

	cmd := &cobra.Command{
		Use:   "history [query]",
		Short: "List or search command history",
		Long: `List the most recent commands, oldest first.

With a query, commands are ranked by how well they fuzzy-match it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.history == nil {
				return errors.New("history is disabled")
			}
			if reset {
				return a.history.ResetHistory()
			}

			dir := ""
			if here {
				dir, err = os.Getwd()
				if err != nil {
					return err
				}
			}

			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return printHistory(a.history, dir, query, limit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&here, "here", false, "Only show commands run in the current directory")
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete all history")
	return cmd
}

// searchWindow is how many recent entries a fuzzy query ranks.
const searchWindow = 1000

type historySource []history.HistoryEntry

func (s historySource) String(i int) string { return s[i].Command }
func (s historySource) Len() int { return len(s) }

// HistoryReader reads history entries.
type HistoryReader interface {
	GetRecentEntries(directory string, limit int) ([]history.HistoryEntry, error)
}

func printHistory(h HistoryReader, dir string, query string, limit int, out io.Writer) error {
	if limit <= 0 {
		return nil
	}

	if query == "" {
		entries, err := h.GetRecentEntries(dir, limit)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			writeHistoryEntry(out, entry, entry.Command)
		}
		return nil
	}

	entries, err := h.GetRecentEntries(dir, searchWindow)
	if err != nil {
		return err
	}
	found := fuzzy.FindFrom(query, historySource(entries))
	if len(found) > limit {
		found = found[:limit]
	}
	for _, match := range found {
		writeHistoryEntry(out, entries[match.Index], styles.Highlight(match.Str, match.MatchedIndexes))
	}
	return nil
}

func writeHistoryEntry(out io.Writer, entry history.HistoryEntry, command string) {
	when := styles.DIM(fmt.Sprintf("%-16s", humanize.Time(entry.CreatedAt)))
	fmt.Fprintf(out, "%5d  %s  %s\n", entry.ID, when, strings.TrimRight(command, "\n"))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), BUILD_VERSION)
		},
	}
}
