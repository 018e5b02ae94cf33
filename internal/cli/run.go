package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ygrebnov/coordinator"
	"github.com/ygrebnov/coordinator/events"
	"github.com/ygrebnov/coordinator/internal/config"
	"github.com/ygrebnov/coordinator/internal/logging"
	"github.com/ygrebnov/coordinator/metrics"
)

// ErrInjected is the error returned by tasks selected to fail by --failure-rate.
var ErrInjected = errors.New("cli: injected task failure")

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Generate tasks, process them and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			s, err := run(cmd.Context(), cfg, logger)
			if s != nil {
				s.print(cmd.OutOrStdout())
			}
			return err
		},
	}
}

// plan is the generated workload: the tasks and the ids of those set to fail.
type plan struct {
	seed  uint64
	tasks []coordinator.Task
	fail  map[int]bool
}

func newPlan(cfg config.Config) plan {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	p := plan{seed: seed, tasks: make([]coordinator.Task, cfg.Tasks), fail: make(map[int]bool)}
	span := cfg.MaxCost - cfg.MinCost + 1
	for i := range p.tasks {
		p.tasks[i] = coordinator.NewTask(i, cfg.MinCost+rng.UintN(span))
		if cfg.FailureRate > 0 && rng.Float64() < cfg.FailureRate {
			p.fail[i] = true
		}
	}
	return p
}

func (p plan) executor(unit time.Duration) coordinator.Executor {
	sleep := coordinator.Sleep(unit)
	return coordinator.ExecutorFunc(func(ctx context.Context, t coordinator.Task) error {
		if err := sleep.Execute(ctx, t); err != nil {
			return err
		}
		if p.fail[t.ID()] {
			return ErrInjected
		}
		return nil
	})
}

type summary struct {
	Seed     uint64
	PoolID   string
	Stats    coordinator.Stats
	Elapsed  time.Duration
	Dropped  uint64 // log events dropped by the async sink
	Failures []int
}

func (s *summary) print(w io.Writer) {
	_, _ = fmt.Fprintf(w, "pool:       %s\n", s.PoolID)
	_, _ = fmt.Fprintf(w, "seed:       %d\n", s.Seed)
	_, _ = fmt.Fprintf(w, "workers:    %d\n", s.Stats.Workers)
	_, _ = fmt.Fprintf(w, "submitted:  %d\n", s.Stats.Submitted)
	_, _ = fmt.Fprintf(w, "completed:  %d\n", s.Stats.Completed)
	_, _ = fmt.Fprintf(w, "failed:     %d\n", s.Stats.Failed)
	_, _ = fmt.Fprintf(w, "abandoned:  %d\n", s.Stats.Abandoned)
	_, _ = fmt.Fprintf(w, "elapsed:    %s\n", s.Elapsed.Round(time.Millisecond))
	if len(s.Failures) > 0 {
		_, _ = fmt.Fprintf(w, "failed ids: %v\n", s.Failures)
	}
	if s.Dropped > 0 {
		_, _ = fmt.Fprintf(w, "dropped log events: %d\n", s.Dropped)
	}
}

// run executes one simulation: create tasks, start the workers, submit, wait for
// completion and shut down. The summary is returned whenever the pool was created.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) (*summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	reg := prometheus.NewRegistry()
	if cfg.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.MetricsAddr, reg, logger)
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	p := newPlan(cfg)
	logger.Info("creating tasks", zap.Int("tasks", len(p.tasks)), zap.Uint64("seed", p.seed))

	rec := events.NewRecorder()
	async := events.NewAsync(events.NewZapSink(logger), 0)

	c, err := coordinator.New(
		coordinator.WithExecutor(p.executor(cfg.CostUnit)),
		coordinator.WithPollInterval(cfg.PollInterval),
		coordinator.WithQueueCapacity(cfg.QueueCapacity),
		coordinator.WithShutdownPolicy(coordinator.ShutdownPolicy(cfg.ShutdownPolicy)),
		coordinator.WithEventSink(events.Multi(async, rec)),
		coordinator.WithMetrics(metrics.NewPrometheusProvider(reg, "coordinator", nil)),
	)
	if err != nil {
		async.Close()
		return nil, err
	}

	started := time.Now()
	s := &summary{Seed: p.seed, PoolID: c.ID()}

	logger.Info("starting workers", zap.Int("workers", cfg.Workers))
	err = c.Start(ctx, cfg.Workers)

	if err == nil {
		logger.Info("submitting tasks")
		err = c.Submit(ctx, p.tasks...)
	}
	if err == nil {
		logger.Info("waiting for all tasks to complete")
		err = c.AwaitCompletion(ctx)
	}

	logger.Info("stopping workers")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.DrainTimeout)
	defer cancel()
	err = errors.Join(err, c.Shutdown(shutdownCtx))

	async.Close()

	s.Stats = c.Stats()
	s.Elapsed = time.Since(started)
	s.Dropped = async.Dropped()
	for _, e := range rec.OfKind(events.KindFailed) {
		s.Failures = append(s.Failures, e.TaskID)
	}

	logger.Info("simulation complete", zap.Duration("elapsed", s.Elapsed))
	return s, err
}

// serveMetrics exposes reg on addr under /metrics until the returned stop is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cli: metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
