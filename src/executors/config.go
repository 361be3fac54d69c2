package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// LoopPeriod of zero disables the background balance reconcile loop.
	LoopPeriod time.Duration `envconfig:"BALANCE_SYNC_INTERVAL" default:"0s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
