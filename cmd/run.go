package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mezonai/powchain/api"
	"github.com/mezonai/powchain/events"
	"github.com/mezonai/powchain/exception"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/monitoring"
	"github.com/mezonai/powchain/utils"
)

var runMine bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the node: HTTP API, metrics and an optional background miner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNode(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runMine, "mine", false, "Start the background miner regardless of miner.enabled")
}

func runNode(ctx context.Context) error {
	n, err := openNode()
	if err != nil {
		return err
	}
	defer n.close()

	if _, err := n.service.Init(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	server := api.NewAPIServer(n.service, n.health, n.cfg.API.ListenAddr, n.cfg.API.SubmitRatePerMinute)
	server.ServeMetrics = n.cfg.Metrics.ServedByAPI()
	g.Go(func() error { return server.Start(ctx) })

	if n.cfg.Metrics.Enabled && n.cfg.Metrics.ListenAddr != "" {
		g.Go(func() error { return serveMetrics(ctx, n.cfg.Metrics.ListenAddr) })
	}

	if runMine || n.cfg.Miner.Enabled {
		bits := n.diffBits(n.cfg.Miner.DiffBits)
		logx.Info("NODE", fmt.Sprintf("Starting miner diff_bits=%d workers=%d", bits, n.powCfg.Workers))
		g.Go(func() error {
			return n.service.MineLoop(ctx, n.cfg.Miner.Data, bits, n.cfg.Miner.Interval())
		})
	}

	g.Go(func() error {
		logChainEvents(ctx, n.bus)
		return nil
	})

	logx.Info("NODE", "Node started")
	err = g.Wait()
	logx.Info("NODE", "Node stopped")
	return err
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	monitoring.RegisterMetrics(mux)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	exception.SafeGo("metrics-shutdown", func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	})

	logx.Info("MONITORING", fmt.Sprintf("Metrics listen on %s", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// logChainEvents reports frontier moves until ctx is done.
func logChainEvents(ctx context.Context, bus *events.EventBus) {
	id, ch := bus.Subscribe()
	defer bus.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-ch:
			if changed, ok := e.(*events.FrontierChanged); ok {
				logx.Info("NODE", fmt.Sprintf("New frontier %s acc_diff=%d", utils.ShortenLog(string(changed.BlockHash())), changed.AccDiff()))
			}
		}
	}
}
