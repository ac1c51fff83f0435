package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tingleradar/tingle-radar/internal/rankings"
)

// NewRankingsCmd creates the 'rankings' command group.
func NewRankingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Show and import weekly ranking snapshots",
	}

	cmd.AddCommand(newRankingsWeeklyCmd())
	cmd.AddCommand(newRankingsImportCmd())

	return cmd
}

func newRankingsWeeklyCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Show the latest ranking snapshots",
		Long: `Show the three most recent ranking snapshots, top 10 each, with effective
tags. Entries whose video left the catalog are skipped.`,
		Example: `  tingle-radar rankings weekly
  tingle-radar rankings weekly --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRankingsWeekly(cmd.Context(), cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runRankingsWeekly(ctx context.Context, w io.Writer, jsonOutput bool) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	lists, err := s.svc.WeeklyRankings(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(w, lists)
	}

	if len(lists) == 0 {
		fmt.Fprintln(w, "No ranking snapshots yet.")
		fmt.Fprintln(w, "Run 'tingle-radar rankings import <file>' to add one.")
		return nil
	}

	for _, l := range lists {
		fmt.Fprintf(w, "%s (%s)\n", l.Name, l.DisplayDate.Format("2006-01-02"))
		if l.Description != "" {
			fmt.Fprintf(w, "  %s\n", l.Description)
		}
		for _, e := range l.Items {
			fmt.Fprintf(w, "  %2d. %s  %s\n", e.Position, e.Video.YouTubeID, e.Video.Title)
			if len(e.EffectiveTags) > 0 {
				fmt.Fprintf(w, "      %s\n", strings.Join(e.EffectiveTags, ", "))
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func newRankingsImportCmd() *cobra.Command {
	var opts rankings.ImportOptions
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Import a generated ranking snapshot",
		Long: `Import a snapshot file: its videos are upserted into the catalog and the
top entries by view count become a new ranking list. Videos matching the
blacklist (mukbang, magnetic ball, marble, eating, grinding, politics) are
dropped.`,
		Example: `  tingle-radar rankings import pulse.json
  tingle-radar rankings import pulse.json --top 30 --name "ASMR Weekly Pulse 2026-10-12"
  tingle-radar rankings import pulse.json --dry-run --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRankingsImport(cmd.Context(), cmd.OutOrStdout(), args[0], opts, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&opts.Top, "top", rankings.DefaultImportTop, "Entries to keep")
	cmd.Flags().StringVar(&opts.Name, "name", "", "List name (default from snapshot)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "List description (default from snapshot)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Rank and validate without writing")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runRankingsImport(ctx context.Context, w io.Writer, path string, opts rankings.ImportOptions, jsonOutput bool) error {
	snap, err := rankings.LoadSnapshot(path)
	if err != nil {
		return err
	}

	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.svc.ImportRanking(ctx, *snap, opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(w, result)
	}

	if result.DryRun {
		fmt.Fprintf(w, "Dry run: %q would get %d entries (%d blacklisted)\n", result.Name, len(result.Entries), result.Skipped)
		return nil
	}
	fmt.Fprintf(w, "✓ Imported %q as list %d with %d entries (%d blacklisted)\n",
		result.Name, result.ListID, len(result.Entries), result.Skipped)
	return nil
}
