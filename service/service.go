package service

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = time.Second

type Service struct {
	impl   *impl
	logger *zap.Logger
	server *http.Server
}

func New(cfg *viper.Viper, logger *zap.Logger) (*Service, error) {

	c, err := NewConfig(cfg)
	if err != nil {
		return nil, err
	}

	svcImpl := newImpl(c, logger)

	s := &Service{
		impl:   svcImpl,
		logger: logger,
	}

	s.server = &http.Server{
		Addr:    net.JoinHostPort("0.0.0.0", c.HTTPPort),
		Handler: s.Handler(),
	}

	return s, nil
}

// Handler routes the demo form, metrics and service info.
func (s *Service) Handler() http.Handler {

	router := http.NewServeMux()
	router.Handle("/", s.impl)
	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/info", Info())

	return router
}

func (s *Service) Close() error {

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Service) Run() error {

	s.logger.Info("listen", zap.String("address", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.logger.Error("http server closed", zap.Error(err))
		return err
	}

	return nil
}
