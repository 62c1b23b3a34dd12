package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/robfig/cron/v3"
	"github.com/smallbiznis/rythudepot/internal/clock"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/rythudepot/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const jobDuesDigest = "dues_digest"

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	Ledger  domain.Service
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *obsmetrics.SchedulerMetrics `optional:"true"`
	Config  Config                       `optional:"true"`
}

type Scheduler struct {
	ledger  domain.Service
	log     *zap.Logger
	cfg     Config
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *obsmetrics.SchedulerMetrics
	cron    *cron.Cron
}

func New(p Params) (*Scheduler, error) {
	if p.Ledger == nil || p.Log == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	metrics := p.Metrics
	if metrics == nil {
		metrics = obsmetrics.Scheduler()
	}
	log := p.Log.Named("scheduler").With(zap.String("component", "scheduler"))
	return &Scheduler{
		ledger:  p.Ledger,
		log:     log,
		cfg:     cfg,
		genID:   p.GenID,
		clock:   p.Clock,
		metrics: metrics,
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cronLogger{log.Sugar()}),
			cron.WithChain(cron.Recover(cronLogger{log.Sugar()}), cron.SkipIfStillRunning(cronLogger{log.Sugar()})),
		),
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name)
	if owner {
		s.logJobStart(ctx, run)
	}
	s.metrics.IncJobRun(name)

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	s.metrics.IncJobError(name, err)
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger(ctx).Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce runs every job immediately.
func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, jobDuesDigest, s.cfg.JobTimeout, s.DuesDigestJob)
}

// Start registers the digest on its cron schedule and starts the cron runner.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled() {
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("dues digest schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started",
		zap.String("schedule", s.cfg.Schedule),
		zap.String("location", s.cfg.Location.String()),
	)
	return nil
}

// Stop halts the cron runner and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
