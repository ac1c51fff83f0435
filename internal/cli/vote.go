package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// NewVoteCmd creates the 'vote' command for recording a tag vote.
func NewVoteCmd() *cobra.Command {
	var fingerprint string

	cmd := &cobra.Command{
		Use:   "vote <video-id> <tag> <up|down>",
		Short: "Vote a tag up or down on a video",
		Long: `Record a community vote on one tag of a video. A repeat vote with the same
fingerprint replaces the earlier one. A tag the classifier missed joins the
video's effective tags at +3 or higher; a classified tag is dropped at -3 or
lower.`,
		Example: `  tingle-radar vote dQw4w9WgXcQ binaural up
  tingle-radar vote dQw4w9WgXcQ tapping down --fingerprint alice
  tingle-radar vote -- dQw4w9WgXcQ tapping -1`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVote(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], args[2], fingerprint)
		},
	}

	cmd.Flags().StringVarP(&fingerprint, "fingerprint", "f", "", "Voter key (default anonymous)")

	return cmd
}

func parseDirection(s string) (int, error) {
	switch strings.ToLower(s) {
	case "up", "+1", "1", "+":
		return 1, nil
	case "down", "-1", "-":
		return -1, nil
	default:
		return 0, fmt.Errorf("invalid vote %q (want up or down)", s)
	}
}

func runVote(ctx context.Context, w io.Writer, videoID, tag, direction, fingerprint string) error {
	dir, err := parseDirection(direction)
	if err != nil {
		return err
	}

	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	score, err := s.svc.SubmitVote(ctx, videoID, tag, fingerprint, dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "✓ %s on %s is now %+d\n", strings.ToLower(tag), videoID, score)
	return nil
}

// NewScoresCmd creates the 'scores' command for showing vote totals.
func NewScoresCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "scores <video-id>",
		Short:   "Show vote scores per tag for a video",
		Example: `  tingle-radar scores dQw4w9WgXcQ --json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScores(cmd.Context(), cmd.OutOrStdout(), args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runScores(ctx context.Context, w io.Writer, videoID string, jsonOutput bool) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	scores, err := s.svc.ScoresForItem(ctx, videoID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(w, scores)
	}

	if len(scores) == 0 {
		fmt.Fprintf(w, "No votes on %s.\n", videoID)
		return nil
	}

	tags := make([]string, 0, len(scores))
	for tag := range scores {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	fmt.Fprintf(w, "Vote scores for %s:\n", videoID)
	for _, tag := range tags {
		fmt.Fprintf(w, "  %-14s %+d\n", tag, scores[tag])
	}
	return nil
}
