/*
Package main is the entry point for the tingle-radar CLI.

tingle-radar classifies ASMR videos into trigger, talking-style, roleplay,
and language tags, lets the community vote tags up or down, and serves the
resulting catalog over HTTP and MCP.

Usage:
  tingle-radar [command]

Available Commands:
  serve       Run the HTTP API
  mcp         Run the MCP server (stdio transport)
  classify    Tag a title with the rule-based classifier
  browse      Browse the catalog with filters
  ingest      Upsert videos from a JSON file into the catalog
  vote        Vote a tag up or down on a video
  scores      Show vote scores per tag for a video
  backfill    Cache classifier tags for videos that have none
  rankings    Show and import weekly ranking snapshots
  channels    List channels by catalog video count
  search      Full-text search over the catalog
  creators    Manage the creator watchlist
  config      Create or inspect the configuration file
  version     Show version information

Examples:
  # Load a crawl and serve it
  tingle-radar ingest crawl.json
  tingle-radar serve

  # Long binaural videos
  tingle-radar browse --duration long --tag binaural
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tingleradar/tingle-radar/internal/cli"
	"github.com/tingleradar/tingle-radar/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tingle-radar",
		Short: "ASMR video tagging, voting, and discovery",
		Long: `tingle-radar tags ASMR videos from their titles, descriptions, and creator
labels, then lets listeners correct the tags with votes.

A classifier tag is removed once its vote score reaches -3; a missing tag is
added once its score reaches +3. The catalog can be browsed by effective
tag, channel, duration bucket, and title language.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.NewServeCmd())
	rootCmd.AddCommand(cli.NewMCPCmd())
	rootCmd.AddCommand(cli.NewClassifyCmd())
	rootCmd.AddCommand(cli.NewBrowseCmd())
	rootCmd.AddCommand(cli.NewIngestCmd())
	rootCmd.AddCommand(cli.NewVoteCmd())
	rootCmd.AddCommand(cli.NewScoresCmd())
	rootCmd.AddCommand(cli.NewBackfillCmd())
	rootCmd.AddCommand(cli.NewRankingsCmd())
	rootCmd.AddCommand(cli.NewChannelsCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewCreatorsCmd())
	rootCmd.AddCommand(cli.NewConfigCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
