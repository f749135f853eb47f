package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// TaskFunc job body; ctx is cancelled when the scheduler stops
type TaskFunc func(ctx context.Context) error

// ErrShutdownTimeout running jobs outlived the shutdown timeout
var ErrShutdownTimeout = errors.New("scheduler shutdown timeout")

// Scheduler gocron scheduler with logged jobs
type Scheduler struct {
	cfg       Config
	scheduler gocron.Scheduler
	log       *logger.CtxZapLogger

	ctx    context.Context
	cancel context.CancelFunc

	started    atomic.Bool
	stopOnce   sync.Once
	stopErr    error
	heartbeats atomic.Int64
	failures   atomic.Int64
}

// New creates a stopped scheduler; the heartbeat job is added when configured
func New(cfg Config, log *logger.CtxZapLogger) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetLogger("scheduler")
	}
	loc, _ := time.LoadLocation(cfg.Location)

	s, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithLogger(gocronLogger{log.GetZapLogger().Sugar()}),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sch := &Scheduler{
		cfg:       cfg,
		scheduler: s,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}

	if cfg.HeartbeatInterval > 0 {
		if _, err := sch.Every("heartbeat", cfg.HeartbeatInterval, sch.heartbeat); err != nil {
			cancel()
			_ = s.Shutdown()
			return nil, err
		}
	}
	return sch, nil
}

func (s *Scheduler) heartbeat(ctx context.Context) error {
	n := s.heartbeats.Add(1)
	s.log.DebugCtx(ctx, "scheduler heartbeat", zap.Int64("count", n))
	return nil
}

// Every runs task at a fixed interval; overlapping runs are skipped
func (s *Scheduler) Every(name string, interval time.Duration, task TaskFunc) (gocron.Job, error) {
	return s.add(name, gocron.DurationJob(interval), task)
}

// Cron runs task on a cron expression with a leading seconds field
func (s *Scheduler) Cron(name, expr string, task TaskFunc) (gocron.Job, error) {
	return s.add(name, gocron.CronJob(expr, true), task)
}

func (s *Scheduler) add(name string, def gocron.JobDefinition, task TaskFunc) (gocron.Job, error) {
	job, err := s.scheduler.NewJob(def,
		gocron.NewTask(func() { s.run(name, task) }),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("register job %s: %w", name, err)
	}
	s.log.Debug("job registered", zap.String("job", name))
	return job, nil
}

func (s *Scheduler) run(name string, task TaskFunc) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.failures.Add(1)
			s.log.ErrorCtx(s.ctx, "job panicked", zap.String("job", name), zap.Any("panic", r))
		}
	}()

	if err := task(s.ctx); err != nil {
		s.failures.Add(1)
		s.log.ErrorCtx(s.ctx, "job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.log.DebugCtx(s.ctx, "job completed",
		zap.String("job", name),
		zap.Duration("duration", time.Since(start)))
}

// Start implements component.Starter
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}
	s.scheduler.Start()
	s.log.InfoCtx(ctx, "scheduler started", zap.Int("jobs", len(s.scheduler.Jobs())))
	return nil
}

// Stop implements component.Stopper; waits for running jobs up to the
// shutdown timeout or ctx, whichever is first
func (s *Scheduler) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.cancel()

		done := make(chan error, 1)
		go func() {
			done <- s.scheduler.Shutdown()
		}()

		timer := time.NewTimer(s.cfg.ShutdownTimeout)
		defer timer.Stop()

		select {
		case err := <-done:
			s.stopErr = err
			if err == nil {
				s.log.InfoCtx(ctx, "scheduler stopped")
			}
		case <-timer.C:
			s.stopErr = fmt.Errorf("%w (%s)", ErrShutdownTimeout, s.cfg.ShutdownTimeout)
		case <-ctx.Done():
			s.stopErr = fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
		}
		if s.stopErr != nil {
			s.log.WarnCtx(ctx, "scheduler stop failed", zap.Error(s.stopErr))
		}
	})
	return s.stopErr
}

// Jobs names of registered jobs
func (s *Scheduler) Jobs() []string {
	jobs := s.scheduler.Jobs()
	names := make([]string, 0, len(jobs))
	for _, job := range jobs {
		names = append(names, job.Name())
	}
	return names
}

// Heartbeats heartbeat runs so far
func (s *Scheduler) Heartbeats() int64 {
	return s.heartbeats.Load()
}

// Failures failed or panicked job runs so far
func (s *Scheduler) Failures() int64 {
	return s.failures.Load()
}

// gocronLogger routes gocron's own logs into zap
type gocronLogger struct {
	l *zap.SugaredLogger
}

func (g gocronLogger) Debug(msg string, args ...any) { g.l.Debugw(msg, args...) }
func (g gocronLogger) Info(msg string, args ...any)  { g.l.Infow(msg, args...) }
func (g gocronLogger) Warn(msg string, args ...any)  { g.l.Warnw(msg, args...) }
func (g gocronLogger) Error(msg string, args ...any) { g.l.Errorw(msg, args...) }
