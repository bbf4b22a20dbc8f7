// Command tracebench replays a request trace against one or more registered
// cache policies and reports the hit ratio each achieved, side by side.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hey-kong/lever/cache"
	"github.com/hey-kong/lever/metrics/prom"
	_ "github.com/hey-kong/lever/policy/fifo"
	_ "github.com/hey-kong/lever/policy/lever"
	_ "github.com/hey-kong/lever/policy/shift"
	_ "github.com/hey-kong/lever/policy/shiftsieve"
	_ "github.com/hey-kong/lever/policy/twoq"

	"github.com/hey-kong/lever/internal/trace"
)

// newMetricsAdapter gives each policy its own Prometheus subsystem so their
// hits/misses/evictions/size gauges don't collide on one /metrics endpoint.
func newMetricsAdapter(reg *prometheus.Registry, policy string) cache.Metrics {
	return prom.New(reg, "tracebench", policy, nil)
}

type options struct {
	tracePath      string
	capacityByte   int64
	considerObjMD  bool
	policies       []string
	metricsAddr    string
	logPath        string
	reportInterval int
}

func main() {
	opts := &options{}

	root := &cobra.Command{
		Use:   "tracebench",
		Short: "Replay a request trace against one or more cache policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.tracePath, "trace", "", "path to a CSV trace (clock_time,obj_id[,obj_size]); \"-\" reads stdin")
	flags.Int64Var(&opts.capacityByte, "capacity", 1<<20, "cache capacity in bytes")
	flags.BoolVar(&opts.considerObjMD, "consider-obj-metadata", false, "charge one byte of metadata overhead per resident object")
	flags.StringSliceVar(&opts.policies, "policy", []string{"Lever"}, fmt.Sprintf("policies to evaluate (repeatable); one of %v", cache.RegisteredNames()))
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address instead of exiting after the run")
	flags.StringVar(&opts.logPath, "log", "", "log file path; empty logs to stderr")
	flags.IntVar(&opts.reportInterval, "report-every", 0, "log running hit ratios every N requests per policy; 0 disables")
	root.MarkFlagRequired("trace")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(opts *options) *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var writer zapcore.WriteSyncer
	if opts.logPath == "" {
		writer = zapcore.AddSync(os.Stderr)
	} else {
		writer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.logPath,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     14,
		})
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, zap.InfoLevel)
	return zap.New(core).Sugar()
}

// result is one policy's outcome over the whole trace.
type result struct {
	policy    string
	requests  int64
	hits      int64
	elapsed   time.Duration
	finalNObj int64
}

func (r result) hitRatio() float64 {
	if r.requests == 0 {
		return 0
	}
	return float64(r.hits) / float64(r.requests)
}

func run(ctx context.Context, opts *options) error {
	logger := newLogger(opts)
	defer logger.Sync()

	if len(opts.policies) == 0 {
		return fmt.Errorf("tracebench: at least one --policy is required")
	}

	var registry *prometheus.Registry
	if opts.metricsAddr != "" {
		registry = prometheus.NewRegistry()
	}

	// Each policy gets its own engine instance and replays the trace
	// independently, so the runs are executed concurrently: they share no
	// state, and an engine is single-threaded by contract within its own
	// run.
	results := make([]result, len(opts.policies))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range opts.policies {
		i, name := i, name
		g.Go(func() error {
			r, err := replay(gctx, name, opts, logger, registry)
			if err != nil {
				return fmt.Errorf("policy %s: %w", name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		logger.Infow("replay complete",
			"policy", r.policy,
			"requests", r.requests,
			"hits", r.hits,
			"hit_ratio", r.hitRatio(),
			"resident_objects", r.finalNObj,
			"elapsed", r.elapsed,
		)
		fmt.Printf("%-12s requests=%-10d hits=%-10d hit_ratio=%.4f elapsed=%s\n",
			r.policy, r.requests, r.hits, r.hitRatio(), r.elapsed)
	}

	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: opts.metricsAddr, Handler: mux}
		logger.Infow("serving metrics", "addr", opts.metricsAddr)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return err
			}
		case <-sigCh:
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}

	return nil
}

func replay(ctx context.Context, policy string, opts *options, logger *zap.SugaredLogger, registry *prometheus.Registry) (result, error) {
	common := cache.CommonParams{
		CapacityByte:        opts.capacityByte,
		ConsiderObjMetadata: opts.considerObjMD,
		Logger:              logger.Named(policy),
	}
	if registry != nil {
		common.Metrics = newMetricsAdapter(registry, policy)
	}

	engine, ok := cache.NewEngine(policy, common)
	if !ok {
		return result{}, fmt.Errorf("unknown policy %q (registered: %v)", policy, cache.RegisteredNames())
	}
	defer engine.Close()

	f, closeFn, err := openTrace(opts.tracePath)
	if err != nil {
		return result{}, err
	}
	defer closeFn()

	reader := trace.NewReader(f)
	var req cache.Request
	r := result{policy: policy}
	start := time.Now()

	for {
		if ctx.Err() != nil {
			return result{}, ctx.Err()
		}
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result{}, err
		}
		rec.ToCacheRequest(&req)
		if engine.Get(&req) {
			r.hits++
		}
		r.requests++
		if opts.reportInterval > 0 && r.requests%int64(opts.reportInterval) == 0 {
			logger.Infow("progress", "policy", policy, "requests", r.requests, "hit_ratio", r.hitRatio())
		}
	}

	r.elapsed = time.Since(start)
	r.finalNObj = engine.NObj()
	return r, nil
}

func openTrace(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
