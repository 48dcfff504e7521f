package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Provider struct {
	kind    string
	success prometheus.Counter
	fails   *prometheus.CounterVec
	io      prometheus.Observer
}

func (p *Provider) SuccessInc() {
	p.success.Inc()
}

// FailsInc counts a failed send under its error code name.
func (p *Provider) FailsInc(code string) {
	p.fails.With(prometheus.Labels{"kind": p.kind, "code": code}).Inc()
}

// NewIOTimer starts measuring one request, the returned func stops it.
func (p *Provider) NewIOTimer() func() {
	start := time.Now()
	return func() {
		p.io.Observe(time.Since(start).Seconds())
	}
}
