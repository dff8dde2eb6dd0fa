package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CodelistMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ciselnik_codelist_mutations_total",
		Help: "Total codelist mutations by entity type and change type",
	}, []string{"entity_type", "change_type"})

	AuditEntriesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ciselnik_audit_entries_written_total",
		Help: "Total audit entries written by change type",
	}, []string{"change_type"})

	AuditWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ciselnik_audit_write_errors_total",
		Help: "Total failed audit entry writes",
	})

	AuditUpdatesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ciselnik_audit_updates_suppressed_total",
		Help: "Total update audit calls skipped because the snapshots were equal",
	})

	AuditSerializationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ciselnik_audit_serialization_fallbacks_total",
		Help: "Total audit snapshots stored as plain text after JSON serialization failed",
	})

	CodelistRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ciselnik_codelist_rows",
		Help: "Current number of rows per codelist table",
	}, []string{"codelist"})

	SSEClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ciselnik_sse_clients",
		Help: "Current number of change-feed SSE clients connected",
	})
)

func IncCodelistMutation(entityType, changeType string) {
	CodelistMutations.WithLabelValues(normalizeLabel(entityType), normalizeLabel(changeType)).Inc()
}

func IncAuditEntryWritten(changeType string) {
	AuditEntriesWritten.WithLabelValues(normalizeLabel(changeType)).Inc()
}

func SetCodelistRows(codelist string, count int64) {
	if count < 0 {
		count = 0
	}
	CodelistRows.WithLabelValues(normalizeLabel(codelist)).Set(float64(count))
}

func SetSSEClients(count int) {
	if count < 0 {
		count = 0
	}
	SSEClients.Set(float64(count))
}

func normalizeLabel(value string) string {
	label := strings.TrimSpace(value)
	if label == "" {
		return "unknown"
	}
	return label
}
