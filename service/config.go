package service

import (
	"github.com/dialogs/dialog-gcm-queue/pkg/worker"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Sender   *worker.Config `mapstructure:"-"`
	HTTPPort string         `mapstructure:"http-port"`
}

func NewConfig(src *viper.Viper) (*Config, error) {

	c := &Config{}
	err := src.Unmarshal(c)
	if err != nil {
		return nil, err
	}

	if c.HTTPPort == "" {
		c.HTTPPort = "8080"
	}

	sub := src.Sub("sender")
	if sub == nil {
		sub = viper.New()
	}

	c.Sender, err = worker.NewConfig(sub)
	if err != nil {
		return nil, errors.Wrap(err, "sender")
	}

	return c, nil
}
