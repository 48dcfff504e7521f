package worker

import (
	"time"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
	"github.com/dialogs/dialog-gcm-queue/pkg/provider"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Kind     provider.Kind `mapstructure:"-"`
	Endpoint string        `mapstructure:"endpoint"`

	// Server key:
	// https://console.firebase.google.com/project/_/settings/cloudmessaging/
	// Optional, the demo form may bring its own.
	ServerKey string        `mapstructure:"key"`
	KeyFile   string        `mapstructure:"key-file"`
	Retries   int           `mapstructure:"retries"`
	Timeout   time.Duration `mapstructure:"timeout"`
	NopMode   bool          `mapstructure:"nop-mode"`
	Sandbox   bool          `mapstructure:"sandbox"`
}

func NewConfig(src *viper.Viper) (*Config, error) {

	c := &Config{}
	if err := src.Unmarshal(c); err != nil {
		return nil, err
	}

	kindName := src.GetString("kind")
	if kindName == "" {
		c.Kind = provider.KindGcm
	} else {
		c.Kind = provider.KindByString(kindName)
		if c.Kind == provider.KindUnknown {
			return nil, errors.Errorf("invalid `kind`: '%s', expected one of %v", kindName, provider.KindStringKeys())
		}
	}

	if c.KeyFile != "" {
		key, err := ReadKeyFile(c.KeyFile)
		if err != nil {
			return nil, err
		}
		c.ServerKey = key
	}

	if c.Endpoint == "" {
		c.Endpoint = provider.DefaultEndpoint
	}

	if c.Retries <= 0 {
		c.Retries = 1
	}

	if c.Timeout < 0 {
		return nil, errors.New("invalid `timeout`")
	}

	return c, nil
}

// WithCredentials returns a copy of c that sends with key to endpoint.
// Empty arguments keep the configured values. The configured key is only
// sent to the configured endpoint: another endpoint needs its own key.
func (c *Config) WithCredentials(key, endpoint string) (*Config, error) {

	retval := *c
	if endpoint != "" && endpoint != c.Endpoint {
		if key == "" {
			return nil, gcmerr.Newf(gcmerr.CodeIllegalAPIKey,
				"server api key required for endpoint: '%s'", endpoint)
		}
		retval.Endpoint = endpoint
	}

	if key != "" {
		retval.ServerKey = key
	}

	return &retval, nil
}
