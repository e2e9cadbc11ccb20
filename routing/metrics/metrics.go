// Package metrics wires routing.Tables activity into Prometheus. A nil
// *Recorder is a complete no-op, so the routing core never requires
// Prometheus to function.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder exposes the routing core's Prometheus instrumentation. The zero
// value is not usable directly; construct one with NewRecorder. A nil
// *Recorder is valid and every method on it is a no-op, so callers that
// don't want metrics can simply leave the field unset.
type Recorder struct {
	epoch          *prometheus.GaugeVec
	routesAdded    *prometheus.CounterVec
	routesExpired  *prometheus.CounterVec
	liveRouteCount *prometheus.GaugeVec
}

// NewRecorder constructs a Recorder and registers its collectors against
// reg. Passing nil for reg uses the default Prometheus registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		epoch: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "routingcore",
			Name:      "current_epoch",
			Help:      "Monotonic epoch counter of the routing tables instance.",
		}, []string{"instance"}),
		routesAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routingcore",
			Name:      "routes_added_total",
			Help:      "Count of successful addRoute insertions, including transitive derivations.",
		}, []string{"instance"}),
		routesExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routingcore",
			Name:      "routes_expired_total",
			Help:      "Count of routes removed by expiration or invalidation.",
		}, []string{"instance", "reason"}),
		liveRouteCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "routingcore",
			Name:      "live_routes",
			Help:      "Number of routes stored for a source ledger, as of the last route insertion into its table; removals do not update it.",
		}, []string{"instance", "source"}),
	}

	reg.MustRegister(r.epoch, r.routesAdded, r.routesExpired, r.liveRouteCount)
	return r
}

// ObserveEpoch records the current epoch value for instance.
func (r *Recorder) ObserveEpoch(instance string, epoch int) {
	if r == nil {
		return
	}
	r.epoch.WithLabelValues(instance).Set(float64(epoch))
}

// IncRoutesAdded records one successful route insertion for instance.
func (r *Recorder) IncRoutesAdded(instance string) {
	if r == nil {
		return
	}
	r.routesAdded.WithLabelValues(instance).Inc()
}

// IncRoutesExpired records n routes removed for the given reason
// ("expired", "invalidated") on instance.
func (r *Recorder) IncRoutesExpired(instance, reason string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.routesExpired.WithLabelValues(instance, reason).Add(float64(n))
}

// SetLiveRouteCount records the number of routes currently stored for
// source within instance.
func (r *Recorder) SetLiveRouteCount(instance, source string, n int) {
	if r == nil {
		return
	}
	r.liveRouteCount.WithLabelValues(instance, source).Set(float64(n))
}
