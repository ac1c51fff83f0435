package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tingleradar/tingle-radar/internal/storage"
)

// NewBackfillCmd creates the 'backfill' command for caching classifier output.
func NewBackfillCmd() *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Cache classifier tags for videos that have none",
		Long: `Classify every catalog video without cached tags and store the result.
Votes are not applied here; they are resolved at read time.`,
		Example: `  tingle-radar backfill
  tingle-radar backfill --batch 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd.Context(), cmd.OutOrStdout(), batch)
		},
	}

	cmd.Flags().IntVar(&batch, "batch", 0, "Rows per batch (default from config)")

	return cmd
}

func runBackfill(ctx context.Context, w io.Writer, batch int) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	if batch <= 0 {
		batch = s.cfg.Backfill.BatchSize
	}

	n, err := s.svc.Backfill(ctx, batch)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Cached tags for %d videos\n", n)
	return nil
}

// NewIngestCmd creates the 'ingest' command for loading videos into the catalog.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <videos.json>",
		Short: "Upsert videos from a JSON file into the catalog",
		Long: `Load a JSON array of videos (youtube_id, title, description, channel_id,
channel_title, published_at, view_count, like_count, duration, tags,
thumbnail_url, is_active) and upsert them. Classifier tags are recomputed
for every video written.`,
		Example: `  tingle-radar ingest crawl-2026-10-12.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}

	return cmd
}

func runIngest(ctx context.Context, w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var videos []storage.Video
	if err := json.Unmarshal(data, &videos); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.svc.Ingest(ctx, videos)
	if err != nil {
		return fmt.Errorf("ingest stopped after %d videos: %w", n, err)
	}
	fmt.Fprintf(w, "✓ Upserted %d videos\n", n)
	return nil
}
