package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewChannelsCmd creates the 'channels' command for listing popular channels.
func NewChannelsCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List channels by catalog video count",
		Example: `  tingle-radar channels
  tingle-radar channels --limit 10 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChannels(cmd.Context(), cmd.OutOrStdout(), limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 30, "Maximum channels (1-100)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runChannels(ctx context.Context, w io.Writer, limit int, jsonOutput bool) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	channels, err := s.svc.PopularChannels(ctx, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(w, channels)
	}

	if len(channels) == 0 {
		fmt.Fprintln(w, "Catalog is empty.")
		return nil
	}

	fmt.Fprintf(w, "Popular channels (%d):\n\n", len(channels))
	for _, c := range channels {
		fmt.Fprintf(w, "  %5d  %s (%s)\n", c.VideoCount, c.ChannelTitle, c.ChannelID)
	}
	return nil
}
