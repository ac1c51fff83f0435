package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tingleradar/tingle-radar/internal/storage"
)

// NewCreatorsCmd creates the 'creators' command group for the watchlist.
func NewCreatorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creators",
		Short: "Manage the creator watchlist",
		Long:  `Channels on the watchlist are the ones the external crawler should visit.`,
	}

	cmd.AddCommand(newCreatorsAddCmd())
	cmd.AddCommand(newCreatorsListCmd())

	return cmd
}

func newCreatorsAddCmd() *cobra.Command {
	var c storage.Creator
	var inactive bool

	cmd := &cobra.Command{
		Use:   "add <channel-id>",
		Short: "Add or update a watchlist channel",
		Example: `  tingle-radar creators add UC123 --title "Quiet Room" --priority 5
  tingle-radar creators add UC123 --inactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.ChannelID = args[0]
			c.IsActive = !inactive
			return runCreatorsAdd(cmd.Context(), cmd.OutOrStdout(), c)
		},
	}

	cmd.Flags().StringVar(&c.ChannelTitle, "title", "", "Channel title")
	cmd.Flags().StringVar(&c.Note, "note", "", "Free-form note")
	cmd.Flags().IntVar(&c.Priority, "priority", 1, "Crawl priority (higher first)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Keep on the list but pause crawling")

	return cmd
}

func runCreatorsAdd(ctx context.Context, w io.Writer, c storage.Creator) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.svc.AddCreator(ctx, c); err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Watching %s\n", c.ChannelID)
	return nil
}

func newCreatorsListCmd() *cobra.Command {
	var all bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List watchlist channels",
		Example: `  tingle-radar creators list
  tingle-radar creators list --all --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreatorsList(cmd.Context(), cmd.OutOrStdout(), all, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include inactive channels")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runCreatorsList(ctx context.Context, w io.Writer, all, jsonOutput bool) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	creators, err := s.svc.Creators(ctx, !all)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(w, creators)
	}

	if len(creators) == 0 {
		fmt.Fprintln(w, "Watchlist is empty.")
		fmt.Fprintln(w, "Run 'tingle-radar creators add <channel-id>' to add one.")
		return nil
	}

	fmt.Fprintf(w, "Watchlist (%d):\n\n", len(creators))
	for _, c := range creators {
		status := "active"
		if !c.IsActive {
			status = "paused"
		}
		fmt.Fprintf(w, "  %s  %s\n", c.ChannelID, c.ChannelTitle)
		fmt.Fprintf(w, "    Priority: %d (%s)\n", c.Priority, status)
		if c.Note != "" {
			fmt.Fprintf(w, "    Note:     %s\n", c.Note)
		}
	}
	return nil
}
