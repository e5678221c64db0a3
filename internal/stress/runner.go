package stress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/shared/id"
)

// ErrInvariant reports a lifetime invariant violated during a run.
var ErrInvariant = errors.New("stress: invariant violated")

// Config sizes a run.
type Config struct {
	Workers      int
	Iterations   int
	Clients      int
	BroadcastRPS int // 0 means unlimited
}

// Report summarises one scenario run.
type Report struct {
	Scenario string           `json:"scenario"`
	Ops      int64            `json:"ops"`
	Duration time.Duration    `json:"duration"`
	Counters map[string]int64 `json:"counters,omitempty"`
}

// Scenario is one soak workload.
type Scenario interface {
	Name() string
	Run(ctx context.Context, cfg Config) (Report, error)
}

// Runner executes scenarios.
type Runner struct {
	cfg     Config
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewRunner creates a runner. logger and metrics may be nil.
func NewRunner(cfg Config, logger *zap.Logger, metrics *monitoring.Metrics) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger, metrics: metrics}
}

// DefaultScenarios returns every built-in scenario.
func DefaultScenarios() []Scenario {
	return []Scenario{WeakRace{}, BroadcastStorm{}, CollectionChurn{}}
}

// Run executes scenarios concurrently and returns their reports in the
// given order. After all scenarios finish, every object they allocated must
// have been destroyed.
func (r *Runner) Run(ctx context.Context, scenarios ...Scenario) ([]Report, error) {
	run := id.NewRunID()
	log := r.logger.With(logging.Run(run))
	before := object.ReadStats()

	log.Info("stress run starting",
		zap.Int("scenarios", len(scenarios)),
		zap.Int("workers", r.cfg.Workers),
		zap.Int("iterations", r.cfg.Iterations),
	)

	reports := make([]Report, len(scenarios))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for i, sc := range scenarios {
		g.Go(func() error {
			timer := monitoring.NewTimer(r.metrics, sc.Name())

			rep, err := sc.Run(ctx, r.cfg)
			status := "ok"
			if err != nil {
				status = "failed"
			}
			rep.Scenario = sc.Name()
			rep.Duration = timer.Stop(status)

			mu.Lock()
			reports[i] = rep
			mu.Unlock()

			if err != nil {
				log.Error("scenario failed", zap.String("scenario", sc.Name()), zap.Error(err))
				return fmt.Errorf("%s: %w", sc.Name(), err)
			}
			log.Info("scenario finished",
				zap.String("scenario", sc.Name()),
				zap.Int64("ops", rep.Ops),
				zap.Duration("duration", rep.Duration),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}

	after := object.ReadStats()
	if leaked := (after.Allocated - before.Allocated) - (after.Destroyed - before.Destroyed); leaked != 0 {
		return reports, fmt.Errorf("%w: %d objects outlived the run", ErrInvariant, leaked)
	}

	log.Info("stress run complete", zap.Int64("objects", after.Allocated-before.Allocated))
	return reports, nil
}

// split divides n iterations over workers, giving the remainder to the
// first workers.
func split(n, workers int) []int {
	if workers < 1 {
		workers = 1
	}
	out := make([]int, workers)
	for i := range out {
		out[i] = n / workers
		if i < n%workers {
			out[i]++
		}
	}
	return out
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
