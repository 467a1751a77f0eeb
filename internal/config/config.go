package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"SRRStocks/internal/dashboard"
	"SRRStocks/internal/timerange"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	DataSource struct {
		Provider    string        `yaml:"provider"` // yahoo, barsapi or mock
		BaseURL     string        `yaml:"base_url"`
		APIKey      string        `yaml:"api_key"`
		Timeout     time.Duration `yaml:"timeout"`
		Concurrency int           `yaml:"concurrency"`
	} `yaml:"data_source"`
	Dashboard struct {
		Currency         string   `yaml:"currency"`
		WalletBalance    *float64 `yaml:"wallet_balance"` // nil means the sample default
		Profit           *float64 `yaml:"profit"`
		Symbols          []string `yaml:"symbols"`
		DefaultSelection []string `yaml:"default_selection"`
		DefaultRange     string   `yaml:"default_range"`
		Watchlist        []string `yaml:"watchlist"`
	} `yaml:"dashboard"`
	Cache struct {
		TTL        time.Duration `yaml:"ttl"`
		MaxEntries int           `yaml:"max_entries"`
		RedisAddr  string        `yaml:"redis_addr"`
		RedisDB    int           `yaml:"redis_db"`
		RedisPass  string        `yaml:"redis_password"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		SnapshotCron string `yaml:"snapshot_cron"`
	} `yaml:"schedule"`
	Logging struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SRR_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("BARS_API_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("BARS_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SNAPSHOT"); v != "" {
		cfg.Schedule.SnapshotCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Dashboard.Symbols = splitList(v)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := dashboard.DefaultCatalog()

	if c.Server.Port == 0 {
		c.Server.Port = 8501
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = "barsapi"
		}
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.Concurrency == 0 {
		c.DataSource.Concurrency = 4
	}
	if c.Dashboard.Currency == "" {
		c.Dashboard.Currency = def.Currency
	}
	if c.Dashboard.WalletBalance == nil {
		v := def.WalletBalance.InexactFloat64()
		c.Dashboard.WalletBalance = &v
	}
	if c.Dashboard.Profit == nil {
		v := def.Profit.InexactFloat64()
		c.Dashboard.Profit = &v
	}
	if len(c.Dashboard.Symbols) == 0 {
		c.Dashboard.Symbols = def.Symbols
	}
	if c.Dashboard.DefaultSelection == nil {
		c.Dashboard.DefaultSelection = def.DefaultSelection
	}
	if c.Dashboard.DefaultRange == "" {
		c.Dashboard.DefaultRange = string(def.DefaultRange)
	}
	if len(c.Dashboard.Watchlist) == 0 {
		c.Dashboard.Watchlist = def.Watchlist
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 256
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/srrstocks.db"
	}
	if c.Schedule.SnapshotCron == "" {
		c.Schedule.SnapshotCron = "0 0 18 * * 1-5"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "barsapi":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the barsapi provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, barsapi, mock", c.DataSource.Provider)
	}
	if c.DataSource.Concurrency < 0 {
		return fmt.Errorf("data_source.concurrency must not be negative")
	}
	if _, err := timerange.Parse(c.Dashboard.DefaultRange, ""); err != nil {
		return fmt.Errorf("dashboard.default_range: %w", err)
	}
	if len(c.Dashboard.Symbols) == 0 {
		return fmt.Errorf("dashboard.symbols must not be empty")
	}
	if c.Dashboard.WalletBalance != nil && *c.Dashboard.WalletBalance < 0 {
		return fmt.Errorf("dashboard.wallet_balance must not be negative")
	}
	return nil
}

// Catalog builds the dashboard content from the configuration.
func (c *Config) Catalog() dashboard.Catalog {
	cat := dashboard.DefaultCatalog()
	cat.Currency = c.Dashboard.Currency
	if c.Dashboard.WalletBalance != nil {
		cat.WalletBalance = decimal.NewFromFloat(*c.Dashboard.WalletBalance)
	}
	if c.Dashboard.Profit != nil {
		cat.Profit = decimal.NewFromFloat(*c.Dashboard.Profit)
	}
	cat.Symbols = c.Dashboard.Symbols
	cat.DefaultSelection = c.Dashboard.DefaultSelection
	cat.DefaultRange = timerange.Choice(c.Dashboard.DefaultRange)
	cat.Watchlist = c.Dashboard.Watchlist
	return cat
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
