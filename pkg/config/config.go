package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"FXOptions/pkg/logger"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"5000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"5s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled *bool  `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Log        logger.Config `yaml:"log"`
	HTTPClient struct {
		Timeout   time.Duration `yaml:"timeout" default:"10s"`
		UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
	} `yaml:"http_client"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity" default:"30"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"5"`
	} `yaml:"rate_limit"`
	Providers struct {
		Yahoo struct {
			ChartURL     string `yaml:"chart_url" default:"https://query1.finance.yahoo.com/v8/finance/chart"`
			OptionsURL   string `yaml:"options_url" default:"https://query2.finance.yahoo.com/v7/finance/options"`
			CookieURL    string `yaml:"cookie_url" default:"https://fc.yahoo.com"`
			CrumbURL     string `yaml:"crumb_url" default:"https://query2.finance.yahoo.com/v1/test/getcrumb"`
			HistoryRange string `yaml:"history_range" default:"3mo"`
		} `yaml:"yahoo"`
		ECB struct {
			ESTRURL string `yaml:"estr_url" default:"https://data-api.ecb.europa.eu/service/data/EST/B.EU000A2X2A25.WT?lastNObservations=1&format=csvdata"`
			DFRURL  string `yaml:"dfr_url" default:"https://data-api.ecb.europa.eu/service/data/FM/B.U2.EUR.4F.KR.DFR.LEV?lastNObservations=1&format=csvdata"`
		} `yaml:"ecb"`
		BoE struct {
			URL string `yaml:"url" default:"https://www.bankofengland.co.uk/boeapps/database/fromshowcolumns.asp?csv.x=yes&SeriesCodes=IUDBEDR&UsingCodes=Y&CSVF=CN&VPD=Y&VFD=N"`
		} `yaml:"boe"`
	} `yaml:"providers"`
	MarketData struct {
		MetalFutures map[string]string  `yaml:"metal_futures"`
		LeaseRates   map[string]float64 `yaml:"lease_rates"`
		DefaultRates map[string]float64 `yaml:"default_rates"`
		RateMin      float64            `yaml:"rate_min"`
		RateMax      float64            `yaml:"rate_max" default:"0.20"`
		History      struct {
			MinRawPoints     int     `yaml:"min_raw_points" default:"15"`
			MinReturns       int     `yaml:"min_returns" default:"10"`
			OutlierThreshold float64 `yaml:"outlier_threshold" default:"0.10"`
			PeriodsPerYear   float64 `yaml:"periods_per_year" default:"252"`
		} `yaml:"history"`
		ReferenceVol struct {
			Underlyings   map[string]string `yaml:"underlyings"`
			AssumedRate   float64           `yaml:"assumed_rate" default:"0.04"`
			MoneynessBand float64           `yaml:"moneyness_band" default:"0.05"`
			MinLastPrice  float64           `yaml:"min_last_price" default:"0.5"`
			MinVol        float64           `yaml:"min_vol" default:"0.05"`
			MaxVol        float64           `yaml:"max_vol" default:"3.0"`
		} `yaml:"reference_vol"`
	} `yaml:"market_data"`
	CredentialStore struct {
		Type  string        `yaml:"type" default:"memory"`
		Key   string        `yaml:"key" default:"fxoptions:yahoo:credential"`
		TTL   time.Duration `yaml:"ttl" default:"12h"`
		Redis struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"credential_store"`
}

// Default returns a configuration populated only from defaults.
func Default() *Config {
	var c Config
	if err := c.applyDefaults(); err != nil {
		// struct tags are static; a failure here is a programming error
		panic(err)
	}
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.applyDefaults(); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("FXOPT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("FXOPT_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("FXOPT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("FXOPT_CREDENTIAL_STORE"); v != "" {
		c.CredentialStore.Type = v
	}
	if v := os.Getenv("FXOPT_REDIS_HOST"); v != "" {
		c.CredentialStore.Redis.Host = v
	}
	if v := os.Getenv("FXOPT_REDIS_PASSWORD"); v != "" {
		c.CredentialStore.Redis.Password = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// MetricsEnabled reports whether /metrics and the HTTP metrics middleware
// are served. Unset means enabled.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be 'json' or 'console', got '%s'", c.Log.Format)
	}
	if c.CredentialStore.Type != "memory" && c.CredentialStore.Type != "redis" {
		return fmt.Errorf("credential_store.type must be 'memory' or 'redis', got '%s'", c.CredentialStore.Type)
	}
	if c.MarketData.RateMin >= c.MarketData.RateMax {
		return fmt.Errorf("market_data.rate_min must be below rate_max")
	}
	if c.MarketData.History.MinReturns < 2 {
		return fmt.Errorf("market_data.history.min_returns must be at least 2")
	}
	if c.HTTPClient.Timeout <= 0 {
		return fmt.Errorf("http_client.timeout must be positive")
	}
	return nil
}

func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	md := &c.MarketData
	if md.MetalFutures == nil {
		md.MetalFutures = map[string]string{"XAG": "SI=F", "XAU": "GC=F", "XPT": "PL=F", "XPD": "PA=F"}
	}
	if md.LeaseRates == nil {
		md.LeaseRates = map[string]float64{"XAG": 0.005, "XAU": 0.002, "XPT": 0.005, "XPD": 0.005}
	}
	if md.DefaultRates == nil {
		md.DefaultRates = map[string]float64{"EUR": 0.025, "USD": 0.045, "GBP": 0.04, "CHF": 0.005, "JPY": 0.005}
	}
	if md.ReferenceVol.Underlyings == nil {
		md.ReferenceVol.Underlyings = map[string]string{"XAG": "SLV"}
	}
	return nil
}
