// Package metrics instruments ledger and distribution operations with
// Prometheus collectors. A nil *Recorder is valid and records nothing.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "libyield"

// Recorder holds the collectors shared by every component.
type Recorder struct {
	ops     *prometheus.CounterVec
	amounts *prometheus.CounterVec
	supply  *prometheus.GaugeVec
	results *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors with reg.
// A nil reg registers nothing, which is convenient in tests.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Mutating operations by component, operation and outcome.",
		}, []string{"component", "op", "outcome"}),
		amounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "amount_total",
			Help:      "Cumulative amounts moved, by kind (minted, burned, claimed).",
		}, []string{"kind"}),
		supply: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_supply",
			Help:      "Current total supply per ledger.",
		}, []string{"ledger"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Service results by operation and result code.",
		}, []string{"op", "code"}),
	}
	if reg == nil {
		return r, nil
	}
	var err error
	if r.ops, err = register(reg, r.ops); err != nil {
		return nil, err
	}
	if r.amounts, err = register(reg, r.amounts); err != nil {
		return nil, err
	}
	if r.supply, err = register(reg, r.supply); err != nil {
		return nil, err
	}
	if r.results, err = register(reg, r.results); err != nil {
		return nil, err
	}
	return r, nil
}

// register reuses an identical collector that is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Op counts one mutating operation.
func (r *Recorder) Op(component, op string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.ops.WithLabelValues(component, op, outcome).Inc()
}

// Amount adds v to the cumulative counter for kind.
func (r *Recorder) Amount(kind string, v uint64) {
	if r == nil || v == 0 {
		return
	}
	r.amounts.WithLabelValues(kind).Add(float64(v))
}

// Supply sets the total supply gauge for a ledger.
func (r *Recorder) Supply(ledger string, v uint64) {
	if r == nil {
		return
	}
	r.supply.WithLabelValues(ledger).Set(float64(v))
}

// Result counts one service result code.
func (r *Recorder) Result(op, code string) {
	if r == nil {
		return
	}
	r.results.WithLabelValues(op, code).Inc()
}
