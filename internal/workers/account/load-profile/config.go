// internal/workers/account/load-profile/config.go
package loadprofile

type Config struct {
	BaseURL string
	IDURL   string
}

func LoadConfig(baseURL, idURL string) *Config {
	return &Config{
		BaseURL: baseURL,
		IDURL:   idURL,
	}
}
