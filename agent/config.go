package agent

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RunConfig is the per-run configuration. It is built once before a run
// and threaded explicitly into the model client and the workflow.
type RunConfig struct {
	Model          string        `mapstructure:"model"`
	Temperature    float64       `mapstructure:"temperature"`
	ModelEndpoint  string        `mapstructure:"model_endpoint"`
	APIKey         string        `mapstructure:"api_key"`
	RecursionLimit int           `mapstructure:"recursion_limit"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type SearchConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Endpoint       string        `mapstructure:"endpoint"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type Configuration struct {
	Run    RunConfig    `mapstructure:"run"`
	Search SearchConfig `mapstructure:"search"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

func NewConfiguration() *Configuration {
	return &Configuration{
		Run: RunConfig{
			Model:          "qwen3:4b",
			Temperature:    0,
			ModelEndpoint:  "http://localhost:11434/v1",
			APIKey:         "dummy",
			RecursionLimit: 40,
			MaxRetries:     2,
		},
		Search: SearchConfig{
			Endpoint:       "https://google.serper.dev/search",
			RequestsPerSec: 5,
			Timeout:        10 * time.Second,
		},
		Server: ServerConfig{Port: "8123"},
		Log:    LogConfig{Level: "info"},
	}
}

// LoadConfiguration layers defaults, an optional config file at path, and
// environment variables (RESEARCH_RUN_MODEL, RESEARCH_SEARCH_API_KEY, ...).
func LoadConfiguration(path string) (*Configuration, error) {
	def := NewConfiguration()

	v := viper.New()
	v.SetDefault("run.model", def.Run.Model)
	v.SetDefault("run.temperature", def.Run.Temperature)
	v.SetDefault("run.model_endpoint", def.Run.ModelEndpoint)
	v.SetDefault("run.api_key", def.Run.APIKey)
	v.SetDefault("run.recursion_limit", def.Run.RecursionLimit)
	v.SetDefault("run.max_retries", def.Run.MaxRetries)
	v.SetDefault("run.request_timeout", def.Run.RequestTimeout)
	v.SetDefault("search.api_key", def.Search.APIKey)
	v.SetDefault("search.endpoint", def.Search.Endpoint)
	v.SetDefault("search.requests_per_sec", def.Search.RequestsPerSec)
	v.SetDefault("search.timeout", def.Search.Timeout)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.development", def.Log.Development)

	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("run.api_key", "RESEARCH_RUN_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("search.api_key", "RESEARCH_SEARCH_API_KEY", "SERPER_API_KEY")
	_ = v.BindEnv("server.port", "RESEARCH_SERVER_PORT", "PORT")
	_ = v.BindEnv("log.level", "RESEARCH_LOG_LEVEL", "LOG_LEVEL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Run.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c RunConfig) Validate() error {
	var errs []error
	if c.Model == "" {
		errs = append(errs, errors.New("run.model is required"))
	}
	if c.ModelEndpoint == "" {
		errs = append(errs, errors.New("run.model_endpoint is required"))
	}
	if c.RecursionLimit <= 0 {
		errs = append(errs, fmt.Errorf("run.recursion_limit must be positive, got %d", c.RecursionLimit))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("run.temperature must be within [0, 2], got %g", c.Temperature))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("run.max_retries must not be negative, got %d", c.MaxRetries))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid run config: %w", errors.Join(errs...))
	}
	return nil
}
