package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/existflow/todoisland/internal/api"
	"github.com/existflow/todoisland/internal/logger"
	"github.com/existflow/todoisland/internal/resource"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is up",
	Long: `Probe the backend liveness endpoint.

Examples:
  todo health
  todo health --watch "@every 30s"
  todo health --watch "*/5 * * * *"`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

var healthWatch string

func init() {
	healthCmd.Flags().StringVarP(&healthWatch, "watch", "w", "", "Repeat the probe on a cron schedule until interrupted")
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := api.New(cfg.APIURL, nil, api.WithTimeout(cfg.RequestTimeout), api.WithUserAgent("todoisland-cli"))
	out := cmd.OutOrStdout()

	if healthWatch == "" {
		return probe(cmd.Context(), out, client)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchHealth(ctx, out, client, healthWatch)
}

// watchHealth probes on schedule until ctx is done
func watchHealth(ctx context.Context, out io.Writer, client resource.Doer, schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		_ = probe(ctx, out, client)
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	logger.Info("Watching backend health", logger.F("schedule", schedule))
	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", schedule)
	_ = probe(ctx, out, client)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func probe(ctx context.Context, out io.Writer, client resource.Doer) error {
	start := time.Now()
	status, err := resource.Health(ctx, client)
	elapsed := time.Since(start).Round(time.Millisecond)
	stamp := time.Now().Format("15:04:05")

	if err != nil {
		fmt.Fprintf(out, "%s  ❌ DOWN  %v (%s)\n", stamp, err, elapsed)
		return err
	}
	if !status.Up() {
		fmt.Fprintf(out, "%s  ❌ %s (%s)\n", stamp, status.Status, elapsed)
		return fmt.Errorf("backend reports %s", status.Status)
	}

	fmt.Fprintf(out, "%s  ✅ %s (%s)\n", stamp, status.Status, elapsed)
	names := make([]string, 0, len(status.Components))
	for name := range status.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "          %-12s %v\n", name, status.Components[name]["status"])
	}
	return nil
}
