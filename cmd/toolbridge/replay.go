package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/skosovsky/toolbridge"
	"github.com/skosovsky/toolbridge/ext/bridgeotel"
	"github.com/skosovsky/toolbridge/internal/config"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Replay recorded tool calls and print the tool responses",
		Long: "Reads newline-delimited session messages (file or stdin), dispatches their tool calls " +
			"to the built-in capabilities and writes each tool response as a JSON line.",
		Args: cobra.MaximumNArgs(1),
		RunE: runReplay,
	}
	cmd.Flags().Bool("metrics", false, "Log an OpenTelemetry metrics summary when done")
	cmd.Flags().Duration("drain-timeout", 5*time.Second, "Max wait for pending acknowledgments after input ends")
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	withMetrics, _ := cmd.Flags().GetBool("metrics")
	drainTimeout, _ := cmd.Flags().GetDuration("drain-timeout")

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	opts := []toolbridge.Option{toolbridge.WithLogger(logger)}
	if cfg.ReportFailures {
		opts = append(opts, toolbridge.WithFailureReporting())
	}
	var reader *sdkmetric.ManualReader
	if withMetrics {
		reader = sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()
		obs, err := bridgeotel.NewObserver(mp.Meter("toolbridge"), noop.NewTracerProvider().Tracer("toolbridge"))
		if err != nil {
			return fmt.Errorf("create observer: %w", err)
		}
		opts = append(opts, toolbridge.WithObserver(obs))
	}

	c := &canvas{logger: logger}
	reg, err := newRegistry(c)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	return replay(cmd.Context(), replayParams{
		in:           in,
		out:          cmd.OutOrStdout(),
		logger:       logger,
		canvas:       c,
		manager:      toolbridge.NewManager(reg, opts...),
		drainTimeout: drainTimeout,
		metrics:      reader,
	})
}

type replayParams struct {
	in           io.Reader
	out          io.Writer
	logger       *slog.Logger
	canvas       *canvas
	manager      *toolbridge.Manager
	drainTimeout time.Duration
	metrics      *sdkmetric.ManualReader
}

func replay(ctx context.Context, p replayParams) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sess := newReplaySession(p.out)
	if err := p.manager.Activate(sess); err != nil {
		return err
	}
	defer p.manager.Deactivate()

	n, runErr := sess.Run(ctx, p.in)

	drainCtx, cancel := context.WithTimeout(ctx, p.drainTimeout)
	defer cancel()
	if err := p.manager.Wait(drainCtx); err != nil {
		p.logger.Warn("pending acknowledgments not drained", "error", err)
	}
	graph, results := p.canvas.snapshot()
	p.logger.Info("replay finished", "batches", n, "graph_bytes", len(graph), "regions", len(results))
	if p.metrics != nil {
		logMetrics(ctx, p.logger, p.metrics)
	}
	return runErr
}

func logMetrics(ctx context.Context, logger *slog.Logger, reader *sdkmetric.ManualReader) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		logger.Warn("collect metrics", "error", err)
		return
	}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				attrs := []any{"metric", m.Name, "value", dp.Value}
				for _, kv := range dp.Attributes.ToSlice() {
					attrs = append(attrs, string(kv.Key), kv.Value.Emit())
				}
				logger.Info("metric", attrs...)
			}
		}
	}
}
