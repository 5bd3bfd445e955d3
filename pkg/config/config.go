package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"5000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
		StaticDir       string        `yaml:"static_dir" default:"frontend/static"`
		IndexFile       string        `yaml:"index_file" default:"frontend/templates/index.html"`
	} `yaml:"server"`
	Logging struct {
		Level     string        `yaml:"level" default:"info"`
		Format    string        `yaml:"format" default:"console"`
		Output    string        `yaml:"output" default:"stdout"`
		Collector bool          `yaml:"collector"`
		Topic     string        `yaml:"topic" default:"livestock.logs"`
		Interval  time.Duration `yaml:"interval" default:"30s"`
		Threshold int           `yaml:"threshold" default:"100"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled       bool          `yaml:"enabled" default:"true"`
		Path          string        `yaml:"path" default:"/metrics"`
		SlowThreshold time.Duration `yaml:"slow_threshold" default:"2s"`
	} `yaml:"metrics"`
	Forecast ForecastConfig `yaml:"forecast"`
	Model    struct {
		Engine         string        `yaml:"engine" default:"lstm"`
		WeightsPath    string        `yaml:"weights_path" default:"models/revenue_lstm.json"`
		RemoteURL      string        `yaml:"remote_url"`
		RemoteTimeout  time.Duration `yaml:"remote_timeout" default:"5s"`
		BreakerFails   uint32        `yaml:"breaker_failures" default:"5"`
		BreakerTimeout time.Duration `yaml:"breaker_timeout" default:"30s"`
	} `yaml:"model"`
	History struct {
		Path         string `yaml:"path" default:"data/Modeldata.xlsx"`
		Sheet        string `yaml:"sheet" default:"Sheet1"`
		Filename     string `yaml:"export_filename" default:"Modeldata.xlsx"`
		Days         int    `yaml:"default_days" default:"30"`
		CleanOnStart bool   `yaml:"clean_on_start" default:"true"`
	} `yaml:"history"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl" default:"5m"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		RPS     float64 `yaml:"rps" default:"5"`
		Burst   int     `yaml:"burst" default:"10"`
	} `yaml:"ratelimit"`
	Sink struct {
		Backend        string        `yaml:"backend" default:"none"`
		BreakerFails   uint32        `yaml:"breaker_failures" default:"3"`
		BreakerTimeout time.Duration `yaml:"breaker_timeout" default:"1m"`
	} `yaml:"sink"`
	Queue struct {
		Addr       string        `yaml:"addr" default:"localhost:6379"`
		Password   string        `yaml:"password"`
		DB         int           `yaml:"db"`
		Prefix     string        `yaml:"prefix" default:"revenuecast:queue"`
		Workers    int           `yaml:"workers" default:"1"`
		RetryLimit int           `yaml:"retry_limit" default:"3"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"10s"`
	} `yaml:"queue"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"livestock.forecasts"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"50ms"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"default"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		Table        string        `yaml:"table" default:"forecast_events"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`
}

// ForecastConfig holds the business constants of the forecasting pipeline.
type ForecastConfig struct {
	Window       int               `yaml:"window" default:"24"`
	Horizon      int               `yaml:"horizon" default:"8"`
	TargetDaily  float64           `yaml:"target_daily" default:"476190"`
	PriceLarge   float64           `yaml:"price_large" default:"2000"`
	PriceSmall   float64           `yaml:"price_small" default:"1000"`
	ScaleMin     [3]float64        `yaml:"scale_min"`
	ScaleMax     [3]float64        `yaml:"scale_max"`
	MarketDays   map[string]string `yaml:"market_days"`
	SearchDays   int               `yaml:"search_days" default:"28"`
	Currency     string            `yaml:"currency_symbol" default:"Rp"`
	Timezone     string            `yaml:"timezone" default:"Asia/Jakarta"`
	SkipHolidays bool              `yaml:"skip_holidays"`
	Holidays     []Holiday         `yaml:"holidays"`
}

// Holiday is a fixed-date closure of the livestock market.
type Holiday struct {
	Name  string `yaml:"name"`
	Month int    `yaml:"month"`
	Day   int    `yaml:"day"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := withTagDefaults()
	c.applyForecastDefaults()
	return c
}

func withTagDefaults() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := withTagDefaults()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyForecastDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads a .env file when present, then the YAML config (or defaults
// when path is empty), then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var c *Config
	if path == "" {
		c = Default()
	} else {
		var err error
		if c, err = Load(path); err != nil {
			return nil, err
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("TARGET_HARIAN"); v != "" {
		target, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TARGET_HARIAN: %w", err)
		}
		c.Forecast.TargetDaily = target
	}
	if v := os.Getenv("HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv("MODEL_WEIGHTS"); v != "" {
		c.Model.WeightsPath = v
	}
	if v := os.Getenv("MODEL_ENGINE"); v != "" {
		c.Model.Engine = v
	}
	if v := os.Getenv("MODEL_URL"); v != "" {
		c.Model.RemoteURL = v
	}
	if v := os.Getenv("SINK_BACKEND"); v != "" {
		c.Sink.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("QUEUE_ADDR"); v != "" {
		c.Queue.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func (c *Config) applyForecastDefaults() {
	f := &c.Forecast
	if f.ScaleMax == [3]float64{} {
		f.ScaleMax = [3]float64{1000, 1000, 2_000_000}
	}
	if len(f.MarketDays) == 0 {
		f.MarketDays = map[string]string{"tuesday": "Selasa", "thursday": "Kamis"}
	}
}

// Location resolves the configured forecast timezone.
func (f ForecastConfig) Location() (*time.Location, error) {
	if f.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(f.Timezone)
}

// Weekdays parses market_days into weekday labels.
func (f ForecastConfig) Weekdays() (map[time.Weekday]string, error) {
	out := make(map[time.Weekday]string, len(f.MarketDays))
	for name, label := range f.MarketDays {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		out[wd] = label
	}
	return out, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	f := c.Forecast
	if f.Window <= 0 {
		return fmt.Errorf("forecast.window must be positive, got %d", f.Window)
	}
	if f.Horizon <= 0 {
		return fmt.Errorf("forecast.horizon must be positive, got %d", f.Horizon)
	}
	if f.TargetDaily < 0 {
		return fmt.Errorf("forecast.target_daily must not be negative")
	}
	for i := range f.ScaleMax {
		if f.ScaleMax[i] <= f.ScaleMin[i] {
			return fmt.Errorf("forecast.scale_max[%d] must exceed scale_min[%d]", i, i)
		}
	}
	if _, err := f.Weekdays(); err != nil {
		return fmt.Errorf("forecast.market_days: %w", err)
	}
	if _, err := f.Location(); err != nil {
		return fmt.Errorf("forecast.timezone: %w", err)
	}
	for _, h := range f.Holidays {
		if h.Month < 1 || h.Month > 12 || h.Day < 1 || h.Day > 31 {
			return fmt.Errorf("forecast.holidays: invalid date %d-%d for %q", h.Month, h.Day, h.Name)
		}
	}

	switch c.Model.Engine {
	case "lstm":
		if c.Model.WeightsPath == "" {
			return fmt.Errorf("model.weights_path is required for the lstm engine")
		}
	case "remote":
		if c.Model.RemoteURL == "" {
			return fmt.Errorf("model.remote_url is required for the remote engine")
		}
	default:
		return fmt.Errorf("model.engine must be 'lstm' or 'remote', got '%s'", c.Model.Engine)
	}

	if c.History.Path == "" {
		return fmt.Errorf("history.path is required")
	}

	switch c.Sink.Backend {
	case "none":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when sink.backend is kafka")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required when sink.backend is clickhouse")
		}
	case "redis":
		if c.Queue.Addr == "" {
			return fmt.Errorf("queue.addr is required when sink.backend is redis")
		}
		if c.Queue.Workers <= 0 {
			return fmt.Errorf("queue.workers must be positive, got %d", c.Queue.Workers)
		}
	default:
		return fmt.Errorf("sink.backend must be 'none', 'kafka', 'clickhouse' or 'redis', got '%s'", c.Sink.Backend)
	}

	if c.Logging.Collector && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("logging.collector requires kafka.brokers")
	}
	return nil
}
