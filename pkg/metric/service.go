package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Service struct {
	success *prometheus.CounterVec
	fails   *prometheus.CounterVec
	io      *prometheus.HistogramVec

	formRecv *prometheus.CounterVec
}

func New() *Service {

	m := &Service{
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gcm",
			Name:      "sent_messages",
			Help:      "Messages accepted by the push server"},
			[]string{"kind"}),
		fails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gcm",
			Name:      "failed_messages",
			Help:      "Messages failed to send"},
			[]string{"kind", "code"}),
		io: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gcm",
			Name:      "io",
			Help:      "Time spent in I/O with the push server (in seconds)"},
			[]string{"kind"}),
		formRecv: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gcm",
			Name:      "form_submissions",
			Help:      "Demo form submissions"},
			[]string{"addr"}),
	}

	for i, c := range []prometheus.Collector{
		m.success,
		m.fails,
		m.io,
		m.formRecv,
	} {
		if err := prometheus.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				panic(err)
			}

			// share the vector registered by a previous instance
			switch i {
			case 0:
				m.success = are.ExistingCollector.(*prometheus.CounterVec)
			case 1:
				m.fails = are.ExistingCollector.(*prometheus.CounterVec)
			case 2:
				m.io = are.ExistingCollector.(*prometheus.HistogramVec)
			case 3:
				m.formRecv = are.ExistingCollector.(*prometheus.CounterVec)
			}
		}
	}

	return m
}

func (m *Service) GetProviderMetrics(kind string) (*Provider, error) {

	var err error

	p := &Provider{fails: m.fails, kind: kind}
	p.success, err = m.success.GetMetricWith(prometheus.Labels{"kind": kind})
	if err != nil {
		return nil, err
	}

	p.io, err = m.io.GetMetricWith(prometheus.Labels{"kind": kind})
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (m *Service) GetPeerMetrics(addr string) (*Peer, error) {

	formRecv, err := m.formRecv.GetMetricWith(prometheus.Labels{"addr": addr})
	if err != nil {
		return nil, err
	}

	return &Peer{formRecv: formRecv}, nil
}
