package config

import (
	"time"

	"github.com/spf13/viper"
)

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path, "console" or empty for stdout
 */
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

/**
 * Metrics configuration
 * @property {string} pushgateway - Pushgateway address; empty disables pushing
 */
type MetricsConfig struct {
	Pushgateway string `mapstructure:"pushgateway"`
}

/**
 * Download configuration for agent release archives
 * @property {string} base_url - Release server base address
 * @property {duration} timeout - Per-download HTTP timeout
 */
type DownloadConfig struct {
	BaseUrl string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

/**
 * Install defaults, overridable per invocation via CLI flags
 */
type InstallConfig struct {
	Path string `mapstructure:"path"`
	User string `mapstructure:"user"`
}

type AppConfig struct {
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Download DownloadConfig `mapstructure:"download"`
	Install  InstallConfig  `mapstructure:"install"`
}

/**
 * Load application configuration from YAML file
 * @description
 * - Looks for config.yaml in /etc/ct-host and the working directory
 * - Environment variables with prefix CT_HOST override file values
 * - A missing config file is not an error; defaults apply
 */
func LoadConfig() (*AppConfig, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/ct-host")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("CT_HOST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var Config AppConfig

func collectConfig(cfg *AppConfig) *AppConfig {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Download.BaseUrl == "" {
		cfg.Download.BaseUrl = "https://releases.hashicorp.com"
	}
	if cfg.Download.Timeout == 0 {
		cfg.Download.Timeout = 10 * time.Minute
	}
	if cfg.Install.Path == "" {
		cfg.Install.Path = "/opt/consul-template"
	}
	if cfg.Install.User == "" {
		cfg.Install.User = "consul-template"
	}
	return cfg
}

func init() {
	cfg, err := LoadConfig()
	if err == nil {
		Config = *cfg
	}
	collectConfig(&Config)
}
