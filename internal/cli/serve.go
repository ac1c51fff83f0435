package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tingleradar/tingle-radar/internal/api"
	"github.com/tingleradar/tingle-radar/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the 'serve' command for running the HTTP API.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Start the tingle-radar HTTP API.

Endpoints:
  GET  /videos                          Browse with filters and pagination
  GET  /videos/{id}                     Video detail with effective tags
  GET  /videos/{id}/tags/scores         Vote score per tag
  POST /videos/{id}/tags/{tag}/vote     Vote a tag up or down
  GET  /rankings/weekly                 Latest ranking snapshots
  GET  /channels/popular                Channels by video count
  GET  /search                          Full-text search

The search index is built on start. When backfill.schedule is set, the
computed-tag backfill and a reindex run on that cron schedule.`,
		Example: `  # Listen on the configured address (default :8080)
  tingle-radar serve

  # Override the address
  tingle-radar serve --addr 127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

// runServe starts the API and the background jobs. It shuts down gracefully
// on SIGINT/SIGTERM.
func runServe(addr string) error {
	rt, err := openSession(true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if addr == "" {
		addr = rt.cfg.Server.ListenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if n, err := rt.svc.Reindex(ctx); err != nil {
		log.Printf("Warning: initial reindex failed: %v", err)
	} else {
		log.Printf("Indexed %d videos", n)
	}

	sched := scheduler.New()
	if spec := rt.cfg.Backfill.Schedule; spec != "" {
		batch := rt.cfg.Backfill.BatchSize
		if err := sched.Add(spec, "backfill", func(ctx context.Context) error {
			n, err := rt.svc.Backfill(ctx, batch)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Printf("Backfill cached tags for %d videos", n)
			}
			_, err = rt.svc.Reindex(ctx)
			return err
		}); err != nil {
			return err
		}
	}
	sched.Start(ctx)
	defer sched.Stop()

	srv := api.NewServer(rt.svc, api.Options{
		DefaultPageSize:   rt.cfg.Browse.DefaultPageSize,
		VoteRatePerMinute: rt.cfg.Server.VoteRatePerMinute,
		VoteBurst:         rt.cfg.Server.VoteBurst,
	}).NewHTTPServer(addr)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		log.Println("Shutdown complete")
		return nil

	case err, ok := <-errChan:
		if ok && err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
