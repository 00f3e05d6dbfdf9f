// Package metrics exposes Prometheus counters for auth, bill and file activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services report to. Nop discards everything.
type Recorder interface {
	SignIn(method string, ok bool)
	TokenRefreshed(ok bool)
	BillWritten(op string)
	FileUploaded(ok bool)
}

type Collector struct {
	signIns     *prometheus.CounterVec
	refreshes   *prometheus.CounterVec
	billWrites  *prometheus.CounterVec
	fileUploads *prometheus.CounterVec
	gatherer    prometheus.Gatherer
}

// NewCollector registers the metrics on reg; Handler serves reg.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billsplit_sign_ins_total",
			Help: "Sign-in attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billsplit_token_refreshes_total",
			Help: "Access token refreshes by outcome.",
		}, []string{"outcome"}),
		billWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billsplit_bill_writes_total",
			Help: "Bills created or updated.",
		}, []string{"op"}),
		fileUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billsplit_file_uploads_total",
			Help: "File uploads by outcome.",
		}, []string{"outcome"}),
		gatherer: reg,
	}

	reg.MustRegister(c.signIns, c.refreshes, c.billWrites, c.fileUploads)
	return c
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (c *Collector) SignIn(method string, ok bool) {
	c.signIns.WithLabelValues(method, outcome(ok)).Inc()
}

func (c *Collector) TokenRefreshed(ok bool) {
	c.refreshes.WithLabelValues(outcome(ok)).Inc()
}

func (c *Collector) BillWritten(op string) {
	c.billWrites.WithLabelValues(op).Inc()
}

func (c *Collector) FileUploaded(ok bool) {
	c.fileUploads.WithLabelValues(outcome(ok)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

type nop struct{}

func (nop) SignIn(string, bool) {}
func (nop) TokenRefreshed(bool) {}
func (nop) BillWritten(string)  {}
func (nop) FileUploaded(bool)   {}

// Nop is a Recorder that records nothing.
var Nop Recorder = nop{}
