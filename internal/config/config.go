package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"seosuite/internal/clustering"
	"seosuite/internal/core"
	"seosuite/internal/fetch"
	"seosuite/internal/keywords"
	"seosuite/internal/linking"
	"seosuite/internal/render"
	"seosuite/internal/store"
)

// Config holds all application configuration
type Config struct {
	App      App                  `mapstructure:"app"`
	Logging  Logging              `mapstructure:"logging"`
	Linking  Linking              `mapstructure:"linking"`
	Keywords core.ExtractorConfig `mapstructure:"keywords"`
	Fetch    Fetch                `mapstructure:"fetch"`
	Database Database             `mapstructure:"database"`
	Server   Server               `mapstructure:"server"`
}

// App holds general application configuration
type App struct {
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// Logging holds logger configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Linking holds defaults for link generation and rendering
type Linking struct {
	Strategy        string             `mapstructure:"strategy"`
	LinksPerArticle int                `mapstructure:"links_per_article"`
	Templates       []string           `mapstructure:"templates"`
	Seed            int64              `mapstructure:"seed"`
	Format          string             `mapstructure:"format"`
	Locale          Locale             `mapstructure:"locale"`
	Cluster         clustering.Options `mapstructure:"cluster"`
}

// Locale selects how link lists are joined. Separator and Conjunction
// override the named locale when set.
type Locale struct {
	Name        string `mapstructure:"name"`
	Separator   string `mapstructure:"separator"`
	Conjunction string `mapstructure:"conjunction"`
}

// Fetch holds page retrieval configuration
type Fetch struct {
	Timeout           string `mapstructure:"timeout"`
	Concurrency       int    `mapstructure:"concurrency"`
	UserAgent         string `mapstructure:"user_agent"`
	ProxyURL          string `mapstructure:"proxy_url"`
	CacheTTL          string `mapstructure:"cache_ttl"`
	FetchSitemapPages bool   `mapstructure:"fetch_sitemap_pages"`
}

// Database holds project store configuration
type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Server holds HTTP API configuration
type Server struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	CORS         CORS   `mapstructure:"cors"`
}

// CORS holds cross-origin settings for the HTTP API
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var globalConfig *Config

// Load loads the configuration from .env, the config file and the environment
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".seosuite")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	postProcessConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the loaded configuration, loading defaults on first use
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	defaults := core.DefaultExtractorConfig()

	viper.SetDefault("app.data_dir", ".seosuite")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("linking.strategy", string(linking.StrategyBalanced))
	viper.SetDefault("linking.links_per_article", 4)
	viper.SetDefault("linking.templates", []string{})
	viper.SetDefault("linking.seed", 0)
	viper.SetDefault("linking.format", string(render.FormatHTML))
	viper.SetDefault("linking.locale.name", "en")
	viper.SetDefault("linking.locale.separator", "")
	viper.SetDefault("linking.locale.conjunction", "")
	viper.SetDefault("linking.cluster.min_shared_words", clustering.DefaultOptions().MinSharedWords)
	viper.SetDefault("linking.cluster.min_word_length", clustering.DefaultOptions().MinWordLength)
	viper.SetDefault("linking.cluster.jaccard_threshold", 0.0)

	viper.SetDefault("keywords.input_type", string(defaults.InputType))
	viper.SetDefault("keywords.max_per_url", defaults.MaxKeywordsPerURL)
	viper.SetDefault("keywords.min_length", defaults.MinKeywordLength)
	viper.SetDefault("keywords.exclude_numbers", defaults.ExcludeNumbers)
	viper.SetDefault("keywords.exclude_common_words", defaults.ExcludeCommonWords)
	viper.SetDefault("keywords.excluded_words", []string{})
	viper.SetDefault("keywords.drop_singleton_words", false)

	viper.SetDefault("fetch.timeout", fetch.DefaultTimeout.String())
	viper.SetDefault("fetch.concurrency", fetch.DefaultConcurrency)
	viper.SetDefault("fetch.user_agent", fetch.DefaultUserAgent)
	viper.SetDefault("fetch.proxy_url", "")
	viper.SetDefault("fetch.cache_ttl", "24h")
	viper.SetDefault("fetch.fetch_sitemap_pages", false)

	viper.SetDefault("database.driver", store.DriverSQLite)
	viper.SetDefault("database.dsn", "")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.cors.enabled", false)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})
}

// bindEnvironmentVariables maps conventional variable names onto config keys
func bindEnvironmentVariables() {
	bindEnvKeys("database.dsn", []string{"SEOSUITE_DATABASE_URL", "DATABASE_URL"})
	bindEnvKeys("server.port", []string{"SEOSUITE_PORT", "PORT"})
	bindEnvKeys("fetch.proxy_url", []string{"SEOSUITE_PROXY_URL"})
	bindEnvKeys("logging.level", []string{"SEOSUITE_LOG_LEVEL", "LOG_LEVEL"})
}

func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

func postProcessConfig(config *Config) {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	config.Linking.Strategy = strings.ToLower(strings.TrimSpace(config.Linking.Strategy))
	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))

	templates := config.Linking.Templates[:0]
	for _, t := range config.Linking.Templates {
		if t = strings.TrimSpace(t); t != "" {
			templates = append(templates, t)
		}
	}
	config.Linking.Templates = templates
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig rejects out-of-range and unknown values
func validateConfig(config *Config) error {
	var errs []error

	if _, err := linking.ParseStrategy(config.Linking.Strategy); err != nil {
		errs = append(errs, err)
	}
	if config.Linking.LinksPerArticle < 1 {
		errs = append(errs, core.NewConfigurationError("linking.links_per_article", "must be at least 1, got %d", config.Linking.LinksPerArticle))
	}
	if _, err := render.ParseFormat(config.Linking.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := config.Linking.RenderLocale(); err != nil {
		errs = append(errs, err)
	}
	if t := config.Linking.Cluster.JaccardThreshold; t < 0 || t > 1 {
		errs = append(errs, core.NewConfigurationError("linking.cluster.jaccard_threshold", "must be within [0, 1], got %g", t))
	}
	if _, err := render.NewRenderer(render.Options{Templates: config.Linking.Templates}, nil); err != nil {
		errs = append(errs, err)
	}

	if err := keywords.ValidateConfig(config.Keywords); err != nil {
		errs = append(errs, err)
	}

	if config.Fetch.Concurrency < 1 {
		errs = append(errs, core.NewConfigurationError("fetch.concurrency", "must be at least 1, got %d", config.Fetch.Concurrency))
	}

	switch config.Database.Driver {
	case store.DriverSQLite, store.DriverPostgres:
		if config.Database.Driver == store.DriverPostgres && config.Database.DSN == "" {
			errs = append(errs, core.NewConfigurationError("database.dsn", "is required for the postgres driver"))
		}
	default:
		errs = append(errs, core.NewConfigurationError("database.driver", "unsupported driver %q (supported: sqlite3, postgres)", config.Database.Driver))
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		errs = append(errs, core.NewConfigurationError("server.port", "must be within [1, 65535], got %d", config.Server.Port))
	}

	durations := map[string]string{
		"fetch.timeout":        config.Fetch.Timeout,
		"fetch.cache_ttl":      config.Fetch.CacheTTL,
		"server.read_timeout":  config.Server.ReadTimeout,
		"server.write_timeout": config.Server.WriteTimeout,
	}
	for key, duration := range durations {
		if duration == "" {
			continue
		}
		if d, err := time.ParseDuration(duration); err != nil || d < 0 {
			errs = append(errs, core.NewConfigurationError(key, "invalid duration %q", duration))
		}
	}

	return errors.Join(errs...)
}

// RenderLocale resolves the named locale and applies the overrides.
func (l Linking) RenderLocale() (render.Locale, error) {
	loc, err := render.LocaleByName(l.Locale.Name)
	if err != nil {
		return render.Locale{}, err
	}
	if l.Locale.Separator != "" {
		loc.Separator = l.Locale.Separator
	}
	if l.Locale.Conjunction != "" {
		loc.Conjunction = l.Locale.Conjunction
	}
	return loc, nil
}

// TimeoutDuration returns the per-page fetch timeout.
func (f Fetch) TimeoutDuration() time.Duration {
	return parseDuration(f.Timeout, fetch.DefaultTimeout)
}

// CacheTTLDuration returns how long cached pages stay fresh. Zero disables the cache.
func (f Fetch) CacheTTLDuration() time.Duration {
	return parseDuration(f.CacheTTL, 0)
}

// ReadTimeoutDuration returns the server read timeout.
func (s Server) ReadTimeoutDuration() time.Duration {
	return parseDuration(s.ReadTimeout, 30*time.Second)
}

// WriteTimeoutDuration returns the server write timeout.
func (s Server) WriteTimeoutDuration() time.Duration {
	return parseDuration(s.WriteTimeout, 120*time.Second)
}

// Addr returns host:port.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Convenience accessors
func GetApp() App           { return Get().App }
func GetLogging() Logging   { return Get().Logging }
func GetLinking() Linking   { return Get().Linking }
func GetFetch() Fetch       { return Get().Fetch }
func GetDatabase() Database { return Get().Database }
func GetServer() Server     { return Get().Server }

// GetKeywords returns the default extractor configuration.
func GetKeywords() core.ExtractorConfig { return Get().Keywords }

// Reset clears the loaded configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
