package scheduler

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// BeatPeriod is how often the fanout enumerates active symbols and
	// schedules their fetch jobs.
	BeatPeriod time.Duration `envconfig:"FETCH_BEAT_PERIOD" default:"15m"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
