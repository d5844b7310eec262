// internal/workers/listing/filter-listings/config.go
package filterlistings

import "wanted-applier/internal/common/fanout"

// Config holds the filter stage settings. Empty word lists switch keyword
// rules off and every listing without an application is accepted.
type Config struct {
	BaseURL       string
	Workers       int
	FilterWords   []string
	RequiredWords []string
}

func LoadConfig(baseURL string, workers int, filterWords, requiredWords []string) *Config {
	if workers <= 0 {
		workers = fanout.DefaultWorkers()
	}
	return &Config{
		BaseURL:       baseURL,
		Workers:       workers,
		FilterWords:   nonEmpty(filterWords),
		RequiredWords: nonEmpty(requiredWords),
	}
}

func nonEmpty(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
