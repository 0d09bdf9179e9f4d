// Package schedule runs periodic maintenance jobs on cron expressions.
package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type CronScheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	ctx    context.Context
}

func NewCronScheduler(logger *zap.Logger) *CronScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron:   cron.New(cron.WithParser(parser)),
		logger: logger,
		ctx:    context.Background(),
	}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	logger := c.logger.With(zap.String("job", job.Name()), zap.String("spec", spec))
	if _, err := c.cron.AddFunc(spec, c.wrap(job)); err != nil {
		logger.Error("schedule job failed", zap.Error(err))
		return err
	}
	logger.Info("job scheduled")
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
	c.cron.Start()
}

func (c *CronScheduler) Stop() {
	stopCtx := c.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		c.logger.Warn("scheduler stop timed out")
	}
}

func (c *CronScheduler) wrap(job Job) func() {
	return func() {
		logger := c.logger.With(zap.String("job", job.Name()))
		start := time.Now()
		if err := job.Run(c.ctx); err != nil {
			logger.Error("job run failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			return
		}
		logger.Debug("job run finished", zap.Duration("elapsed", time.Since(start)))
	}
}
