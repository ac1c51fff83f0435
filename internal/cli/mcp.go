package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tingleradar/tingle-radar/internal/mcp"
)

// NewMCPCmd creates the 'mcp' command for running the MCP stdio server.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start the tingle-radar MCP server using stdio transport.

Tools:
  • radar_classify - Tag arbitrary ASMR text
  • radar_browse   - Filtered, paginated catalog browse
  • radar_vote     - Vote a tag up or down on a video
  • radar_scores   - Vote scores for a video
  • radar_rankings - Latest weekly ranking snapshots
  • radar_search   - Full-text catalog search`,
		Example: `  # Run directly
  tingle-radar mcp

  # Register with an MCP client
  claude mcp add tingle-radar -- tingle-radar mcp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP()
		},
	}

	return cmd
}

// runMCP serves stdin/stdout until stdin closes or a signal arrives.
func runMCP() error {
	rt, err := openSession(true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := rt.svc.Reindex(ctx); err != nil {
		log.Printf("Warning: reindex failed, search disabled: %v", err)
	}

	server := mcp.NewServer(rt.svc, rt.cfg.Browse.DefaultPageSize)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case <-ctx.Done():
		log.Println("Received signal, shutting down")
		return nil
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
