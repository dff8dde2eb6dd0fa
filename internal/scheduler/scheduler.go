package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	specValiditySweep = "0 0 0 * * *"
	specRowCounts     = "0 */10 * * * *"
)

type ValidityTask interface {
	SweepExpired()
}

type MetricsTask interface {
	RefreshRowCounts()
}

type Deps struct {
	ValidityJob ValidityTask
	MetricsJob  MetricsTask
}

func NewScheduler(deps Deps, logger *zap.Logger) *cron.Cron {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC))

	if deps.ValidityJob != nil {
		addFunc(c, specValiditySweep, "classification.sweep_expired", logger, deps.ValidityJob.SweepExpired)
	}
	if deps.MetricsJob != nil {
		addFunc(c, specRowCounts, "metrics.refresh_row_counts", logger, deps.MetricsJob.RefreshRowCounts)
	}

	return c
}

func addFunc(c *cron.Cron, spec string, name string, logger *zap.Logger, fn func()) {
	if c == nil || fn == nil {
		return
	}

	if _, err := c.AddFunc(spec, func() {
		defer recoverJobPanic(name, logger)
		start := time.Now()
		fn()
		logger.Debug("scheduler job finished", zap.String("job", name), zap.Duration("cost", time.Since(start)))
	}); err != nil {
		logger.Error("register scheduler job failed",
			zap.String("job", name),
			zap.String("spec", spec),
			zap.Error(err),
		)
	}
}

func recoverJobPanic(jobName string, logger *zap.Logger) {
	if logger == nil {
		return
	}

	if recovered := recover(); recovered != nil {
		logger.Error("scheduler job panic recovered",
			zap.String("job", jobName),
			zap.Any("panic", recovered),
		)
	}
}
