package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cermakludek/legislative-enums-sub000/internal/metrics"
	"github.com/cermakludek/legislative-enums-sub000/internal/service"
)

// MetricsJob keeps the per-codelist row gauges current.
type MetricsJob struct {
	systemService *service.SystemService
	logger        *zap.Logger
}

func NewMetricsJob(systemService *service.SystemService, logger *zap.Logger) *MetricsJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MetricsJob{
		systemService: systemService,
		logger:        logger,
	}
}

func (j *MetricsJob) RefreshRowCounts() {
	if j == nil || j.systemService == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	counts, err := j.systemService.CodelistRowCounts(ctx)
	if err != nil {
		j.logger.Warn("refresh codelist row counts failed", zap.Error(err))
		return
	}

	for codelist, count := range counts {
		metrics.SetCodelistRows(codelist, count)
	}
}
