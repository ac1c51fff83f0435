package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tingleradar/tingle-radar/internal/search"
)

// NewSearchCmd creates the 'search' command for full-text catalog search.
func NewSearchCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the catalog",
		Long: `Search titles, descriptions, creator labels, and channel names. Results are
ranked by BM25 relevance and carry effective tags.`,
		Example: `  tingle-radar search "ear cleaning"
  tingle-radar search 耳搔き --limit 5 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "Maximum results")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runSearch(ctx context.Context, w io.Writer, query string, limit int, jsonOutput bool) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.svc.Reindex(ctx); err != nil {
		return err
	}

	hits, err := s.svc.Search(ctx, query, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(w, hits)
	}

	if len(hits) == 0 {
		fmt.Fprintf(w, "No results for %q.\n", query)
		return nil
	}

	for i, h := range hits {
		fmt.Fprintf(w, "%2d. %s  %s (%.3f)\n", i+1, h.YouTubeID, h.Title, h.Score)
		fmt.Fprintf(w, "    %s\n", h.ChannelTitle)
		if len(h.EffectiveTags) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(h.EffectiveTags, ", "))
		}
	}
	return nil
}
