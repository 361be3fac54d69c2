package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	SupabaseURL        string        `envconfig:"SUPABASE_URL"`
	SupabaseServiceKey string        `envconfig:"SUPABASE_SERVICE_KEY"`
	SupabaseTimeout    time.Duration `envconfig:"SUPABASE_TIMEOUT" default:"15s"`
	// PostgREST truncates at its max-rows setting, so listings are paged.
	SupabasePageSize int `envconfig:"SUPABASE_PAGE_SIZE" default:"1000"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
