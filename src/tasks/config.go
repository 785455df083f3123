package tasks

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RetentionLimit is the ceiling of candles kept per symbol; pruning
	// never targets a count below it.
	RetentionLimit int `envconfig:"CANDLES_TO_KEEP_PER_SYMBOL" default:"100"`
	// StaggerDelay spaces out per-symbol fetch jobs to stay friendly to
	// the exchange API's rate limits.
	StaggerDelay     time.Duration `envconfig:"FETCH_STAGGER_DELAY" default:"2s"`
	SignalMaxRetries int           `envconfig:"SIGNAL_MAX_RETRIES" default:"3"`
	SignalRetryDelay time.Duration `envconfig:"SIGNAL_RETRY_DELAY" default:"60s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
