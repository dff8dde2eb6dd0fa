package service

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"
)

type SystemStatus struct {
	Version       string           `json:"version"`
	GoVersion     string           `json:"go_version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	CPUPercent    float64          `json:"cpu_percent"`
	MemoryPercent float64          `json:"memory_percent"`
	DBTotalConns  int32            `json:"db_total_conns"`
	DBIdleConns   int32            `json:"db_idle_conns"`
	CodelistRows  map[string]int64 `json:"codelist_rows"`
}

// SystemService backs the admin status panel: host utilization, pool stats
// and per-codelist row counts. Host probes failing is not an error worth
// surfacing; the affected values just stay zero.
type SystemService struct {
	pool      *pgxpool.Pool
	version   string
	startedAt time.Time
	logger    *zap.Logger
}

func NewSystemService(pool *pgxpool.Pool, version string, logger *zap.Logger) *SystemService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SystemService{
		pool:      pool,
		version:   version,
		startedAt: time.Now().UTC(),
		logger:    logger,
	}
}

func (s *SystemService) Status(ctx context.Context) (*SystemStatus, error) {
	if s == nil {
		return nil, errors.New("system service is nil")
	}

	status := &SystemStatus{
		Version:       s.version,
		GoVersion:     runtime.Version(),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}

	if values, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(values) > 0 {
		status.CPUPercent = values[0]
	} else if err != nil {
		s.logger.Debug("cpu probe failed", zap.Error(err))
	}

	if stat, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		status.MemoryPercent = stat.UsedPercent
	} else {
		s.logger.Debug("memory probe failed", zap.Error(err))
	}

	if s.pool != nil {
		poolStat := s.pool.Stat()
		status.DBTotalConns = poolStat.TotalConns()
		status.DBIdleConns = poolStat.IdleConns()
	}

	counts, err := s.CodelistRowCounts(ctx)
	if err != nil {
		return nil, err
	}
	status.CodelistRows = counts

	return status, nil
}

// CodelistRowCounts is also polled by the metrics collector in main.
func (s *SystemService) CodelistRowCounts(ctx context.Context) (map[string]int64, error) {
	if s.pool == nil {
		return nil, errors.New("database pool is nil")
	}

	counts := make(map[string]int64, 4)
	for _, table := range []string{"voltage_levels", "network_types", "classification_nodes", "audit_entries"} {
		var total int64
		if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&total); err != nil {
			return nil, err
		}
		counts[table] = total
	}

	return counts, nil
}
