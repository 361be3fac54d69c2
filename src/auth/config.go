package auth

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// UserHeader is set by the upstream auth gateway after it verified the session.
	UserHeader string `envconfig:"AUTH_USER_HEADER" default:"X-User-Name"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
