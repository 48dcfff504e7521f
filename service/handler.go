package service

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
	"github.com/dialogs/dialog-gcm-queue/pkg/message"
	"github.com/dialogs/dialog-gcm-queue/pkg/metric"
	"github.com/dialogs/dialog-gcm-queue/pkg/provider"
	"github.com/dialogs/dialog-gcm-queue/pkg/worker"
	"go.uber.org/zap"
)

// impl serves the demo form: GET renders it, POST sends the message it
// describes and renders the push server answer.
type impl struct {
	cfg    *Config
	logger *zap.Logger
	metric *metric.Service
}

func newImpl(cfg *Config, logger *zap.Logger) *impl {
	return &impl{
		cfg:    cfg,
		logger: logger,
		metric: metric.New(),
	}
}

func (i *impl) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		i.render(w, http.StatusOK, &page{Endpoint: i.cfg.Sender.Endpoint})

	case http.MethodPost:
		i.send(w, r)

	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (i *impl) send(w http.ResponseWriter, r *http.Request) {

	i.countPeer(r.RemoteAddr)

	if err := r.ParseForm(); err != nil {
		i.renderError(w, http.StatusBadRequest, &page{}, gcmerr.Wrap(gcmerr.CodeMalformedRequest, err, "parse form"))
		return
	}

	p := &page{
		Endpoint: i.cfg.Sender.Endpoint,
		Form:     r.PostForm,
	}

	sub, err := parseForm(r.PostForm)
	if err != nil {
		i.renderError(w, http.StatusBadRequest, p, err)
		return
	}

	if sub.Endpoint != "" {
		p.Endpoint = sub.Endpoint
	}

	msg, err := message.FromFields(sub.Fields)
	if err != nil {
		i.renderError(w, http.StatusBadRequest, p, err)
		return
	}

	senderCfg, err := i.cfg.Sender.WithCredentials(sub.ServerKey, sub.Endpoint)
	if err != nil {
		i.renderError(w, http.StatusBadRequest, p, err)
		return
	}

	sender, err := worker.New(senderCfg, i.logger, i.metric)
	if err != nil {
		i.renderError(w, http.StatusBadRequest, p, err)
		return
	}

	resp, err := sender.Send(r.Context(), msg)
	if err != nil {
		i.renderError(w, http.StatusBadGateway, p, err)
		return
	}

	out, err := json.MarshalIndent(resp.Fields(), "", "  ")
	if err != nil {
		i.renderError(w, http.StatusInternalServerError, p, gcmerr.Wrap(gcmerr.CodeUnknownError, err, "encode response"))
		return
	}

	p.Response = string(out)
	p.InvalidTokens = resp.InvalidTokens(provider.Targets(msg))

	i.render(w, http.StatusOK, p)
}

func (i *impl) countPeer(remoteAddr string) {

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	peer, err := i.metric.GetPeerMetrics(host)
	if err != nil {
		i.logger.Error("peer metrics", zap.Error(err))
		return
	}

	peer.Inc()
}

func (i *impl) renderError(w http.ResponseWriter, status int, p *page, err error) {

	i.logger.Info("form rejected", zap.Int("status", status), zap.Error(err))

	p.Error = &pageError{
		Code: int(gcmerr.CodeOf(err)),
		Text: err.Error(),
	}

	i.render(w, status, p)
}

func (i *impl) render(w http.ResponseWriter, status int, p *page) {

	buf := bytes.NewBuffer(nil)
	if err := pageTemplate.Execute(buf, p); err != nil {
		i.logger.Error("render page", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		i.logger.Error("write page", zap.Error(err))
	}
}
