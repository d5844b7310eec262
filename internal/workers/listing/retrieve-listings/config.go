// internal/workers/listing/retrieve-listings/config.go
package retrievelistings

import "wanted-applier/internal/common/fanout"

type Config struct {
	BaseURL string
	Workers int
}

func LoadConfig(baseURL string, workers int) *Config {
	if workers <= 0 {
		workers = fanout.DefaultWorkers()
	}
	return &Config{
		BaseURL: baseURL,
		Workers: workers,
	}
}
