package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 5000, c.Server.Port)
	assert.Equal(t, 24, c.Forecast.Window)
	assert.Equal(t, 8, c.Forecast.Horizon)
	assert.Equal(t, 476190.0, c.Forecast.TargetDaily)
	assert.Equal(t, 2000.0, c.Forecast.PriceLarge)
	assert.Equal(t, 1000.0, c.Forecast.PriceSmall)
	assert.Equal(t, [3]float64{1000, 1000, 2_000_000}, c.Forecast.ScaleMax)
	assert.Equal(t, 28, c.Forecast.SearchDays)
	assert.Equal(t, "none", c.Sink.Backend)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)

	days, err := c.Forecast.Weekdays()
	require.NoError(t, err)
	assert.Equal(t, map[time.Weekday]string{time.Tuesday: "Selasa", time.Thursday: "Kamis"}, days)
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: production
server:
  port: 8080
  cors: false
forecast:
  target_daily: 500000
  market_days:
    saturday: Sabtu
  holidays:
    - {name: Kemerdekaan, month: 8, day: 17}
sink:
  backend: kafka
kafka:
  brokers: [k1:9092, k2:9092]
`))
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.False(t, c.Server.CORS)
	assert.Equal(t, 500000.0, c.Forecast.TargetDaily)
	assert.Equal(t, 24, c.Forecast.Window)
	assert.Equal(t, map[string]string{"saturday": "Sabtu"}, c.Forecast.MarketDays)
	assert.Equal(t, []Holiday{{Name: "Kemerdekaan", Month: 8, Day: 17}}, c.Forecast.Holidays)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(c *Config)
		wantErr string
	}{
		"zero window":        {mutate: func(c *Config) { c.Forecast.Window = 0 }, wantErr: "forecast.window"},
		"zero horizon":       {mutate: func(c *Config) { c.Forecast.Horizon = 0 }, wantErr: "forecast.horizon"},
		"inverted bounds":    {mutate: func(c *Config) { c.Forecast.ScaleMin[2] = 3_000_000 }, wantErr: "scale_max[2]"},
		"bad weekday":        {mutate: func(c *Config) { c.Forecast.MarketDays = map[string]string{"funday": "x"} }, wantErr: "market_days"},
		"bad timezone":       {mutate: func(c *Config) { c.Forecast.Timezone = "Mars/Olympus" }, wantErr: "timezone"},
		"bad holiday":        {mutate: func(c *Config) { c.Forecast.Holidays = []Holiday{{Month: 13, Day: 1}} }, wantErr: "holidays"},
		"unknown engine":     {mutate: func(c *Config) { c.Model.Engine = "onnx" }, wantErr: "model.engine"},
		"remote without url": {mutate: func(c *Config) { c.Model.Engine = "remote" }, wantErr: "remote_url"},
		"unknown sink":       {mutate: func(c *Config) { c.Sink.Backend = "s3" }, wantErr: "sink.backend"},
		"kafka no brokers":   {mutate: func(c *Config) { c.Sink.Backend = "kafka" }, wantErr: "kafka.brokers"},
		"clickhouse no host": {mutate: func(c *Config) { c.Sink.Backend = "clickhouse" }, wantErr: "clickhouse.host"},
		"redis no addr":      {mutate: func(c *Config) { c.Sink.Backend = "redis"; c.Queue.Addr = "" }, wantErr: "queue.addr"},
		"collector no kafka": {mutate: func(c *Config) { c.Logging.Collector = true }, wantErr: "logging.collector"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7000\n"), 0o644))

	t.Setenv("PORT", "9090")
	t.Setenv("TARGET_HARIAN", "600000")
	t.Setenv("HISTORY_PATH", "/data/ledger.xlsx")
	t.Setenv("SINK_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 600000.0, c.Forecast.TargetDaily)
	assert.Equal(t, "/data/ledger.xlsx", c.History.Path)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "redis:6379", c.Cache.Redis.Addr)
}

func TestLoadWithEnvBadNumber(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := LoadWithEnv("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
