package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Browser struct {
		Headless        bool
		ExecPath        string
		UserAgent       string
		PageLoadTimeout string
	}
	Fetcher struct {
		Engine     string
		MaxRetries int
		Backoff    string
		Settle     string
	}
	Output struct {
		Dir string
	}
	Logging struct {
		Dir  string
		File bool
	}
	Storage struct {
		Driver string
		DSN    string
	}
	Server struct {
		Port int
	}
}

// LoadConfig reads config.yaml from . or ./config. A missing file is not an
// error; defaults and SITEMAP_* environment variables still apply.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("sitemap")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.execpath", "")
	v.SetDefault("browser.useragent", "")
	v.SetDefault("browser.pageloadtimeout", "60s")
	v.SetDefault("fetcher.engine", "browser")
	v.SetDefault("fetcher.maxretries", 3)
	v.SetDefault("fetcher.backoff", "5s")
	v.SetDefault("fetcher.settle", "1s")
	v.SetDefault("output.dir", "output")
	v.SetDefault("logging.dir", "logs")
	v.SetDefault("logging.file", true)
	v.SetDefault("storage.driver", "none")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("server.port", 8080)
}

func (c *Config) GetPageLoadTimeout() time.Duration {
	return parseDuration(c.Browser.PageLoadTimeout, 60*time.Second)
}

func (c *Config) GetBackoff() time.Duration {
	return parseDuration(c.Fetcher.Backoff, 5*time.Second)
}

func (c *Config) GetSettle() time.Duration {
	return parseDuration(c.Fetcher.Settle, time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}
