package syncbalances

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Timeout time.Duration `envconfig:"SYNC_TIMEOUT" default:"10m"`
	// FailOnError makes the command exit non-zero when any account failed.
	FailOnError bool `envconfig:"SYNC_FAIL_ON_ERROR" default:"false"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
