package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/storesearch/internal/usecase/gateway"
	storesearch "github.com/kailas-cloud/storesearch/pkg/sdk"
)

var (
	paletteRole     string
	paletteUser     string
	paletteBackend  string
	paletteToken    string
	paletteDebounce time.Duration
	paletteWait     time.Duration
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Drive a command palette from stdin",
	Long: `Reads one command per line and prints the palette after each:

  <text>          replace the query with text
  :down  :up      move the cursor
  :enter          activate the selected row
  :esc            close the palette
  :open           reopen the palette
  :act N ACTION   run a quick action on row N (favorite, payNext, receipt, print)

Without --backend remote search returns no results.`,
	Args: cobra.NoArgs,
	RunE: runPalette,
}

func init() {
	f := paletteCmd.Flags()
	f.StringVarP(&paletteRole, "role", "r", "", "Role to search as (default: the rules' default role)")
	f.StringVarP(&paletteUser, "user", "u", "cli", "User owning favorites and recents")
	f.StringVar(&paletteBackend, "backend", "", "Base URL of the search backend")
	f.StringVar(&paletteToken, "token", "", "Bearer token for the search backend")
	f.DurationVar(&paletteDebounce, "debounce", gateway.DefaultDebounce, "Remote search debounce")
	f.DurationVar(&paletteWait, "wait", 5*time.Second, "Max time to wait for remote results per line")
}

func runPalette(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []storesearch.Option{
		storesearch.WithVocabulary(vocabPaths),
		storesearch.WithDebounce(paletteDebounce),
		storesearch.WithKeyPrefix("searchctl:"),
	}
	if paletteBackend != "" {
		opts = append(opts, storesearch.WithBackend(paletteBackend, paletteToken))
	}
	client, err := storesearch.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	sess, err := client.OpenPalette(ctx, paletteUser, paletteRole)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSnapshot(out, sess.Snapshot())

	sc := bufio.NewScanner(cmd.InOrStdin())
	for sc.Scan() {
		line := sc.Text()
		if err := paletteLine(ctx, out, sess, line); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		printSnapshot(out, awaitRemote(sess, paletteWait))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

func paletteLine(ctx context.Context, out io.Writer, sess *storesearch.Palette, line string) error {
	if !strings.HasPrefix(line, ":") {
		_, err := sess.Keystroke(line)
		return err
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case ":down":
		_, _, err := sess.HandleKey(ctx, storesearch.KeyArrowDown)
		return err
	case ":up":
		_, _, err := sess.HandleKey(ctx, storesearch.KeyArrowUp)
		return err
	case ":esc":
		_, _, err := sess.HandleKey(ctx, storesearch.KeyEscape)
		return err
	case ":open":
		sess.Open(ctx)
		return nil
	case ":enter":
		_, act, err := sess.HandleKey(ctx, storesearch.KeyEnter)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "-> navigate %s\n", act.Path)
		return nil
	case ":act":
		if len(fields) != 3 {
			return fmt.Errorf("usage: :act N ACTION")
		}
		i, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("row index %q: %w", fields[1], err)
		}
		act, err := sess.QuickAction(ctx, i, storesearch.Action(fields[2]))
		if err != nil {
			return err
		}
		if act.Action == storesearch.ActionFavorite {
			fmt.Fprintf(out, "-> favorite %t\n", act.Favorite)
		} else {
			fmt.Fprintf(out, "-> navigate %s\n", act.Path)
		}
		return nil
	}
	return fmt.Errorf("unknown command %q", fields[0])
}

// awaitRemote blocks until no remote search is pending or timeout elapses.
func awaitRemote(sess *storesearch.Palette, timeout time.Duration) storesearch.Snapshot {
	deadline := time.After(timeout)
	for {
		snap := sess.Snapshot()
		if !snap.RemoteState.Pending() {
			return snap
		}
		select {
		case <-sess.Updates():
		case <-deadline:
			return sess.Snapshot()
		}
	}
}

func printSnapshot(out io.Writer, s storesearch.Snapshot) {
	if !s.Open() {
		fmt.Fprintln(out, "[closed]")
		return
	}
	fmt.Fprintf(out, "[%s] %q remote=%s\n", s.Status, s.Query.Final, s.RemoteState)
	if s.Query.HasSuggestion() {
		fmt.Fprintf(out, "  did you mean: %s\n", s.Query.Suggestion)
	}
	if s.Error != "" {
		fmt.Fprintf(out, "  ! %s\n", s.Error)
	}
	for i, it := range s.Items {
		marker := " "
		if i == s.Cursor {
			marker = ">"
		}
		star := ""
		if it.Favorite {
			star = " *"
		}
		fmt.Fprintf(out, "%s %2d %-8s %s%s\n", marker, i, it.Kind, it.Title(), star)
	}
}
