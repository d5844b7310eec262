// internal/common/config/loader.go
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	apperrors "wanted-applier/internal/common/errors"
	"wanted-applier/internal/common/validation"
	"wanted-applier/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "WANTED"

	DefaultBaseURL = "https://www.wanted.co.kr"
	DefaultIDURL   = "https://id-api.wanted.jobs"
	DefaultTimeout = 20000
)

const configSchema = `{
	"type": "object",
	"required": ["account", "searches"],
	"properties": {
		"account": {
			"type": "object",
			"required": ["email"],
			"properties": {
				"email": {"type": "string", "format": "email"}
			}
		},
		"searches": {
			"type": "object",
			"minProperties": 1,
			"additionalProperties": {"type": "integer", "minimum": 0, "maximum": 30}
		}
	}
}`

// Loader reads configuration from flags, WANTED_* environment variables, a
// config file and defaults, in that order of precedence.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &Loader{v: v}
}

// RegisterFlags defines the command-line overrides on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to the config file (json or yaml)")
	fs.String("email", "", "account email")
	fs.String("password", "", "account password (prefer WANTED_ACCOUNT_PASSWORD)")
	fs.Int("workers", 0, "concurrent requests per stage (default: number of CPUs)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: json or console")
	fs.String("pushgateway", "", "prometheus pushgateway url")
}

// BindFlags wires flags defined by RegisterFlags into the loader.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"account.email":           "email",
		"account.password":        "password",
		"concurrency.workers":     "workers",
		"logging.level":           "log-level",
		"logging.format":          "log-format",
		"metrics.pushgateway_url": "pushgateway",
	}
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := l.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file at path, or searches for config.{json,yaml} in
// . and ./configs when path is empty. A missing file is not an error when
// searching; flags and the environment can supply everything.
func (l *Loader) Load(path string) (*Config, error) {
	loadEnvFile()

	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName("config")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("./configs")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	expandEnvVars(l.v)

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := l.validateConfig(&cfg); err != nil {
		return nil, err
	}

	if !cfg.Account.CacheToken && (cfg.Account.Token != "" || cfg.Account.TokenExp != 0) {
		cfg.Account.Token = ""
		cfg.Account.TokenExp = 0
		if err := l.writeSession(nil); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// File returns the config file in use, or "" when none was found.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// SaveSession stores the session token in the config file when token caching
// is enabled. It is a no-op otherwise.
func (l *Loader) SaveSession(cfg *Config, session *models.Session) error {
	if !cfg.Account.CacheToken || session == nil {
		return nil
	}
	cfg.Account.Token = session.Token
	cfg.Account.TokenExp = session.Expiry
	return l.writeSession(session)
}

// writeSession rewrites only the token keys of the file on disk, so values
// that came from flags or the environment never leak into it.
func (l *Loader) writeSession(session *models.Session) error {
	path := l.v.ConfigFileUsed()
	if path == "" {
		return nil
	}

	file := viper.New()
	file.SetConfigFile(path)
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config for update: %w", err)
	}

	if session == nil {
		file.Set("account.token", "")
		file.Set("account.token_exp", 0)
	} else {
		file.Set("account.token", session.Token)
		file.Set("account.token_exp", session.Expiry)
	}

	if err := file.WriteConfig(); err != nil {
		return fmt.Errorf("error writing config %s: %w", path, err)
	}
	return nil
}

// Load .env from the working directory or the project root, if present.
func loadEnvFile() {
	possiblePaths := []string{".env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Expands ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("account.email", "")
	v.SetDefault("account.password", "")
	v.SetDefault("account.cache_token", false)
	v.SetDefault("account.token", "")
	v.SetDefault("account.token_exp", 0)

	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.id_url", DefaultIDURL)
	v.SetDefault("api.client_id", "")
	v.SetDefault("api.timeout", DefaultTimeout)

	v.SetDefault("concurrency.workers", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.redis.key_prefix", "wanted:session:")

	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "wanted-applier")

	v.SetDefault("notifications.aws.region", "ap-northeast-2")
	v.SetDefault("notifications.email.enabled", false)
	v.SetDefault("notifications.email.from", "")
	v.SetDefault("notifications.sms.enabled", false)
	v.SetDefault("notifications.sms.topic_arn", "")

	v.SetDefault("registry.path", "")
}

// applyDefaults fills values that depend on the host or on other fields.
func applyDefaults(cfg *Config) {
	if cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = runtime.NumCPU()
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = DefaultTimeout
	}
	cfg.API.BaseURL = strings.TrimSuffix(cfg.API.BaseURL, "/")
	cfg.API.IDURL = strings.TrimSuffix(cfg.API.IDURL, "/")

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 5
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
}

// validateConfig checks the loaded settings against configSchema. Searches are
// taken from the raw file values so fractional years are rejected rather than
// truncated.
func (l *Loader) validateConfig(cfg *Config) error {
	searches := l.v.Get("searches")
	if searches == nil {
		searches = map[string]interface{}{}
	}
	doc := map[string]interface{}{
		"account":  map[string]interface{}{"email": cfg.Account.Email},
		"searches": searches,
	}

	result, err := validation.Validate(configSchema, doc)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !result.Valid {
		return apperrors.NewConfigInvalidError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if cfg.Notifications.Email.Enabled && (cfg.Notifications.Email.From == "" || len(cfg.Notifications.Email.To) == 0) {
		return apperrors.NewConfigInvalidError("notifications.email requires from and to")
	}
	if cfg.Notifications.SMS.Enabled && cfg.Notifications.SMS.TopicARN == "" {
		return apperrors.NewConfigInvalidError("notifications.sms requires topic_arn")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
