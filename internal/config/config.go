package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Source    SourceConfig    `mapstructure:"source"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

// PipelineConfig is the full control surface of the streaming loop. Duration 0
// means run until cancelled.
type PipelineConfig struct {
	TargetRate       int           `mapstructure:"target_rate"`
	BatchSize        int           `mapstructure:"batch_size"`
	Duration         time.Duration `mapstructure:"duration"`
	Stations         int           `mapstructure:"stations"`
	Contamination    float64       `mapstructure:"contamination"`
	MinWarmupSamples int           `mapstructure:"min_warmup_samples"`
	ModelVersion     string        `mapstructure:"model_version"`
}

type SourceConfig struct {
	Kind        string        `mapstructure:"kind"`
	Seed        int64         `mapstructure:"seed"`
	FeedURL     string        `mapstructure:"feed_url"`
	FeedTimeout time.Duration `mapstructure:"feed_timeout"`
}

type RetentionConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	MetricsMaxAge time.Duration `mapstructure:"metrics_max_age"`
	AlertsMaxAge  time.Duration `mapstructure:"alerts_max_age"`
	SweepSpec     string        `mapstructure:"sweep_spec"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")

	v.SetDefault("pipeline.target_rate", 1800)
	v.SetDefault("pipeline.batch_size", 600)
	v.SetDefault("pipeline.duration", "10m")
	v.SetDefault("pipeline.stations", 12)
	v.SetDefault("pipeline.contamination", 0.03)
	v.SetDefault("pipeline.min_warmup_samples", 20)
	v.SetDefault("pipeline.model_version", "online-sgd-v1")

	v.SetDefault("source.kind", "simulator")
	v.SetDefault("source.seed", 42)
	v.SetDefault("source.feed_url", "")
	v.SetDefault("source.feed_timeout", "15s")

	v.SetDefault("retention.enabled", true)
	v.SetDefault("retention.metrics_max_age", "168h")
	v.SetDefault("retention.alerts_max_age", "720h")
	v.SetDefault("retention.sweep_spec", "@every 1h")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
