package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gatedbus/app"
	"github.com/kilianp07/gatedbus/config"
	"github.com/kilianp07/gatedbus/infra/logger"
)

func newRunCmd() *cobra.Command {
	var scriptPath string
	var hold bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a JSON lines script against a bus built from the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.OutOrStdout(), scriptPath, hold)
		},
	}
	cmd.Flags().StringVarP(&scriptPath, "script", "s", "-", "script file, - for stdin")
	cmd.Flags().BoolVar(&hold, "hold", false, "keep serving metrics after the script until interrupted")
	return cmd
}

func run(ctx context.Context, out io.Writer, scriptPath string, hold bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log := logger.New("gatedbus")
	svc, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	var script io.Reader = os.Stdin
	if scriptPath != "-" {
		f, err := os.Open(scriptPath)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Errorf("close script: %v", err)
			}
		}()
		script = f
	}

	metricsCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	metricsDone := make(chan error, 1)
	go func() { metricsDone <- svc.ServeMetrics(metricsCtx) }()

	rep, err := svc.Run(ctx, script)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return err
	}
	if hold {
		<-ctx.Done()
	}
	cancel()
	if err := <-metricsDone; err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
