package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tingleradar/tingle-radar/internal/catalog"
	"github.com/tingleradar/tingle-radar/internal/tagging"
)

type browseFlags struct {
	page     int
	pageSize int
	channels []string
	duration string
	tags     []string
	language string
	sort     string
	json     bool
}

// NewBrowseCmd creates the 'browse' command for querying the catalog.
func NewBrowseCmd() *cobra.Command {
	var f browseFlags

	cmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"ls"},
		Short:   "Browse the catalog with filters",
		Long: `List catalog videos by effective tags, channel, duration bucket, and title
language. Filters combine with AND; --tag matches when any listed tag is
present.

Duration buckets: short (2-5 min), medium (5-15 min), long (15 min+).
Sort orders: published_desc (default), views_desc, likes_desc.`,
		Example: `  tingle-radar browse --duration long --tag binaural
  tingle-radar browse --language ja --sort views_desc
  tingle-radar browse --channel UC123 --page 2 --page-size 20 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().IntVar(&f.page, "page", 1, "Page number (1-indexed)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Items per page (default from config)")
	cmd.Flags().StringSliceVarP(&f.channels, "channel", "c", nil, "Channel id (repeatable)")
	cmd.Flags().StringVar(&f.duration, "duration", "", "Duration bucket: short, medium, long")
	cmd.Flags().StringSliceVarP(&f.tags, "tag", "t", nil, "Effective tag (repeatable, any match)")
	cmd.Flags().StringVar(&f.language, "language", "", "Title language: ja, ko, zh, en")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort order")
	cmd.Flags().BoolVarP(&f.json, "json", "j", false, "Output as JSON")

	return cmd
}

func runBrowse(ctx context.Context, w io.Writer, f browseFlags) error {
	bucket, err := catalog.ParseBucket(f.duration)
	if err != nil {
		return err
	}
	sort, err := catalog.ParseSort(f.sort)
	if err != nil {
		return err
	}
	language := strings.ToLower(f.language)
	if language != "" && !tagging.IsLanguage(language) {
		return fmt.Errorf("unknown language %q (want ja, ko, zh, or en)", f.language)
	}

	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	size := f.pageSize
	if size == 0 {
		size = s.cfg.Browse.DefaultPageSize
	}

	result, err := s.svc.Browse(ctx, catalog.Filters{
		ChannelIDs: f.channels,
		Duration:   bucket,
		Tags:       f.tags,
		Language:   language,
		Sort:       sort,
	}, catalog.Page{Number: f.page, Size: size})
	if err != nil {
		return err
	}

	if f.json {
		return printJSON(w, result)
	}

	if result.Total == 0 {
		fmt.Fprintln(w, "No videos match.")
		return nil
	}

	fmt.Fprintf(w, "Videos %d-%d of %d (page %d):\n\n",
		(result.Page-1)*result.PageSize+1,
		(result.Page-1)*result.PageSize+len(result.Items),
		result.Total, result.Page)
	for _, item := range result.Items {
		fmt.Fprintf(w, "  %s  %s\n", item.YouTubeID, item.Title)
		fmt.Fprintf(w, "    Channel:  %s\n", item.ChannelTitle)
		if item.Duration != nil {
			fmt.Fprintf(w, "    Duration: %s\n", formatDuration(*item.Duration))
		}
		fmt.Fprintf(w, "    Language: %s\n", item.Language)
		if len(item.EffectiveTags) > 0 {
			fmt.Fprintf(w, "    Tags:     %s\n", strings.Join(item.EffectiveTags, ", "))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func formatDuration(seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
