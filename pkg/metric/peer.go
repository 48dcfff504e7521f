package metric

import "github.com/prometheus/client_golang/prometheus"

type Peer struct {
	formRecv prometheus.Counter
}

func (p *Peer) Inc() {
	p.formRecv.Inc()
}
