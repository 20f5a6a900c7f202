package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger service.
type Metrics struct {
	TransfersTotal *prometheus.CounterVec // labeled by operation: transfer, transfer_from
	MintsTotal     prometheus.Counter
	BurnsTotal     prometheus.Counter
	ApprovalsTotal prometheus.Counter

	GateDenials *prometheus.CounterVec // labeled by reason code

	TotalSupply       prometheus.Gauge
	OperationLatency  *prometheus.HistogramVec // labeled by operation
	ComplianceBatches prometheus.Histogram

	FlagChanges *prometheus.CounterVec // labeled by flag: whitelisted, blacklisted
	RoleChanges *prometheus.CounterVec // labeled by role: whitelister, blacklister, owner
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TransfersTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_transfers_total",
			Help: "Total number of successful balance transfers, labeled by operation",
		}, []string{"operation"}),
		MintsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_mints_total",
			Help: "Total number of successful mints",
		}),
		BurnsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_burns_total",
			Help: "Total number of successful burns",
		}),
		ApprovalsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_approvals_total",
			Help: "Total number of successful allowance approvals",
		}),
		GateDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_gate_denials_total",
			Help: "Total number of operations rejected by the transfer gate, labeled by reason",
		}, []string{"reason"}),
		TotalSupply: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tokengate_total_supply",
			Help: "Current total supply of the asset",
		}),
		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tokengate_operation_latency_seconds",
			Help:    "Latency of ledger operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ComplianceBatches: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tokengate_compliance_batch_size",
			Help:    "Size of compliance batch operations",
			Buckets: []float64{1, 10, 50, 100, 200, 300},
		}),
		FlagChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_flag_changes_total",
			Help: "Total number of compliance flag changes, labeled by flag",
		}, []string{"flag"}),
		RoleChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_role_changes_total",
			Help: "Total number of role registry changes, labeled by role",
		}, []string{"role"}),
	}
}

// Nil-safe helpers so services can emit metrics without caring whether
// observability is wired.

func (m *Metrics) ObserveOperation(op string, seconds float64) {
	if m != nil {
		m.OperationLatency.WithLabelValues(op).Observe(seconds)
	}
}

func (m *Metrics) IncrementTransfer(op string) {
	if m != nil {
		m.TransfersTotal.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) IncrementMint() {
	if m != nil {
		m.MintsTotal.Inc()
	}
}

func (m *Metrics) IncrementBurn() {
	if m != nil {
		m.BurnsTotal.Inc()
	}
}

func (m *Metrics) IncrementApproval() {
	if m != nil {
		m.ApprovalsTotal.Inc()
	}
}

func (m *Metrics) IncrementGateDenial(reason string) {
	if m != nil {
		m.GateDenials.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) SetTotalSupply(supply uint64) {
	if m != nil {
		m.TotalSupply.Set(float64(supply))
	}
}

func (m *Metrics) ObserveBatchSize(size int) {
	if m != nil {
		m.ComplianceBatches.Observe(float64(size))
	}
}

func (m *Metrics) IncrementFlagChange(flag string) {
	if m != nil {
		m.FlagChanges.WithLabelValues(flag).Inc()
	}
}

func (m *Metrics) IncrementRoleChange(role string) {
	if m != nil {
		m.RoleChanges.WithLabelValues(role).Inc()
	}
}
