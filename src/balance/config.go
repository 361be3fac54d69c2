package balance

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Threshold is the smallest drift, in account currency, that triggers a write.
	Threshold float64 `envconfig:"BALANCE_SYNC_THRESHOLD" default:"0.01"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
