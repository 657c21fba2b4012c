package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// ContractMetrics tracks issued contracts and collected installments.
type ContractMetrics struct {
	created          *prometheus.CounterVec
	financed         prometheus.Counter
	installmentsPaid prometheus.Counter
	markedOverdue    prometheus.Counter
}

func NewContractMetrics(reg prometheus.Registerer) *ContractMetrics {
	if reg == nil {
		return &ContractMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contracts_created_total",
		Help: "Contracts issued, by payment mode.",
	}, []string{"payment_mode"})
	financed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contracts_financed_value_total",
		Help: "Sum of item value debited from investors.",
	})
	paid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "installments_paid_total",
		Help: "Installment payments recorded.",
	})
	overdue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "installments_marked_overdue_total",
		Help: "Installments flipped to Overdue by the sweep.",
	})
	reg.MustRegister(created, financed, paid, overdue)
	return &ContractMetrics{created: created, financed: financed, installmentsPaid: paid, markedOverdue: overdue}
}

func (m *ContractMetrics) ObserveContract(mode string, itemValue decimal.Decimal) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(mode)).Inc()
	if value := itemValue.InexactFloat64(); value > 0 {
		m.financed.Add(value)
	}
}

func (m *ContractMetrics) IncInstallmentPaid() {
	if m == nil || m.installmentsPaid == nil {
		return
	}
	m.installmentsPaid.Inc()
}

func (m *ContractMetrics) AddOverdue(n int64) {
	if m == nil || m.markedOverdue == nil || n <= 0 {
		return
	}
	m.markedOverdue.Add(float64(n))
}
