// Package jobs runs the periodic maintenance work of the server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 2 * time.Minute

// IdleExpirer closes conversations that went silent.
type IdleExpirer interface {
	ExpireIdle(ctx context.Context) (int64, error)
}

// ChannelProber refreshes the messaging channel's ready state.
type ChannelProber interface {
	Probe(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger}))),
		logger: logger,
	}
}

// AddExpirySweep registers the idle-conversation sweep. An empty spec disables it.
func (s *Scheduler) AddExpirySweep(spec string, expirer IdleExpirer) error {
	return s.add("expiry_sweep", spec, func(ctx context.Context) error {
		_, err := expirer.ExpireIdle(ctx)
		return err
	})
}

func (s *Scheduler) AddChannelProbe(spec string, prober ChannelProber) error {
	return s.add("channel_probe", spec, prober.Probe)
}

func (s *Scheduler) add(name, spec string, run func(ctx context.Context) error) error {
	if spec == "" {
		s.logger.Info("job disabled", zap.String("job", name))
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := run(ctx); err != nil {
			s.logger.Warn("job failed", zap.String("job", name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	s.logger.Info("job scheduled", zap.String("job", name), zap.String("schedule", spec))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
