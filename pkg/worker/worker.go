package worker

import (
	"context"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
	"github.com/dialogs/dialog-gcm-queue/pkg/message"
	"github.com/dialogs/dialog-gcm-queue/pkg/metric"
	"github.com/dialogs/dialog-gcm-queue/pkg/provider"
	"github.com/dialogs/dialog-gcm-queue/pkg/provider/gcm"
	"github.com/dialogs/dialog-gcm-queue/pkg/provider/legacyfcm"
	"go.uber.org/zap"
)

var ErrEmptyMessage = gcmerr.New(gcmerr.CodeInvalidParams, "empty message")

// Worker sends one message at a time through the configured provider.
type Worker struct {
	kind    provider.Kind
	nopMode bool
	sandbox bool
	logger  *zap.Logger
	metric  *metric.Provider
	sender  provider.ISender
}

func New(cfg *Config, logger *zap.Logger, svcMetric *metric.Service) (*Worker, error) {

	var (
		sender provider.ISender
		err    error
	)

	switch cfg.Kind {
	case provider.KindGcm:
		sender, err = gcm.New(cfg.ServerKey, cfg.Endpoint, cfg.Retries, cfg.Timeout)
	case provider.KindFcm:
		sender, err = legacyfcm.New(cfg.ServerKey, cfg.Endpoint, cfg.Retries)
	default:
		err = gcmerr.Newf(gcmerr.CodeInvalidParams, "unknown provider kind: %s", cfg.Kind)
	}

	if err != nil {
		return nil, err
	}

	return NewWithSender(cfg, sender, logger, svcMetric)
}

func NewWithSender(cfg *Config, sender provider.ISender, logger *zap.Logger, svcMetric *metric.Service) (*Worker, error) {

	providerMetric, err := svcMetric.GetProviderMetrics(cfg.Kind.String())
	if err != nil {
		return nil, err
	}

	return &Worker{
		kind:    cfg.Kind,
		nopMode: cfg.NopMode,
		sandbox: cfg.Sandbox,
		logger:  logger.With(zap.String("worker", cfg.Kind.String())),
		metric:  providerMetric,
		sender:  sender,
	}, nil
}

func (w *Worker) Kind() provider.Kind {
	return w.kind
}

func (w *Worker) NoOpMode() bool {
	return w.nopMode
}

// Send passes msg to the provider. In sandbox mode the message is sent as
// a dry run, msg itself is not modified. In nop mode nothing is sent.
func (w *Worker) Send(ctx context.Context, msg *message.Message) (*provider.Response, error) {

	if msg == nil {
		w.logger.Error(ErrEmptyMessage.Error())
		return nil, ErrEmptyMessage
	}

	targets := provider.Targets(msg)
	hashes := make([]string, 0, len(targets))
	for _, token := range targets {
		hashes = append(hashes, TokenHash(token))
	}

	// hide device tokens to hashes
	l := w.logger.With(zap.Strings("token hash", hashes))

	if w.sandbox && !msg.DryRun() {
		msg = msg.Clone().SetDryRun(true)
	}

	if w.nopMode {
		l.Info("nop mode", zap.Stringer("message", secretMessage{msg}))
		return &provider.Response{
			StatusCode: 200,
			Results:    make([]*provider.ResponseResult, 0),
		}, nil
	}

	timerCancel := w.metric.NewIOTimer()
	resp, err := w.sender.Send(ctx, msg)
	timerCancel()

	if err != nil {
		w.metric.FailsInc(gcmerr.CodeOf(err).String())
		l.Error("failed to send", zap.Error(err))
		return nil, err
	}

	w.metric.SuccessInc()
	l.Info("success send",
		zap.Int("success", resp.Success),
		zap.Int("failure", resp.Failure),
		zap.Int64("multicast id", resp.MulticastID))

	return resp, nil
}

// secretMessage logs a message with its string values masked.
type secretMessage struct {
	msg *message.Message
}

func (s secretMessage) String() string {
	out, err := provider.JSONWithoutSecrets(s.msg)
	if err != nil {
		return err.Error()
	}

	return string(out)
}
