package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	KucoinBaseURL string        `envconfig:"KUCOIN_BASE_URL" default:"https://api.kucoin.com"`
	KucoinTimeout time.Duration `envconfig:"KUCOIN_TIMEOUT" default:"10s"`

	LiaraAPIKey  string        `envconfig:"LIARA_API_KEY"`
	LiaraBaseURL string        `envconfig:"LIARA_BASE_URL" default:"https://ai.liara.ir/v1"`
	LiaraModel   string        `envconfig:"LIARA_MODEL" default:"openai/gpt-4o-mini"`
	LiaraTimeout time.Duration `envconfig:"LIARA_TIMEOUT" default:"60s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
