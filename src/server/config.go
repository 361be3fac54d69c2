package server

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendGorm     = "gorm"
	BackendSupabase = "supabase"
)

type Config struct {
	Port string `envconfig:"PORT" default:"9898"`
	// StoreBackend selects where trades and accounts are read from.
	// "supabase" serves reads and balance writes only; trade mutations need "gorm".
	StoreBackend    string        `envconfig:"STORE_BACKEND" default:"gorm"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
