// Package config loads the AppConfig with spf13/viper (env-file +
// environment variables, the same KeyDelimiter("__") scheme the teacher's
// api/integration-api/config.InitConfig uses for nested sections) and
// validates it with go-playground/validator/v10 so a missing required field
// fails fast at startup rather than surfacing as a nil-pointer panic deep in
// a request handler.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// AppConfig is the top-level node configuration.
type AppConfig struct {
	Name     string `mapstructure:"service_name" validate:"required"`
	Version  string `mapstructure:"version" validate:"required"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`

	// RestToken is the static bearer token the §6 auth middleware compares
	// every request against.
	RestToken string `mapstructure:"rest_token" validate:"required"`

	// ResumeSecret signs session resume JWTs (internal/session.TokenIssuer).
	ResumeSecret            string        `mapstructure:"resume_secret" validate:"required"`
	ResumeDefaultTimeoutSec int           `mapstructure:"resume_default_timeout_sec" validate:"required"`
	ResumeDefaultTimeout    time.Duration `mapstructure:"-"`

	DefaultSampleRate int `mapstructure:"default_sample_rate" validate:"required"`
	DefaultChannels   int `mapstructure:"default_channels" validate:"required"`

	StatsIntervalSec int           `mapstructure:"stats_interval_sec" validate:"required"`
	StatsInterval    time.Duration `mapstructure:"-"`

	// PlayerUpdateIntervalSec paces the periodic PlayerUpdate tick (§4.7);
	// default 5s matches the original player's Config.player_update_secs.
	PlayerUpdateIntervalSec int           `mapstructure:"player_update_interval_sec" validate:"required"`
	PlayerUpdateInterval    time.Duration `mapstructure:"-"`

	Redis RedisConfig `mapstructure:"redis"`
	Stats StatsConfig `mapstructure:"stats_db"`

	LogFilePath string `mapstructure:"log_file_path"`
}

// RedisConfig holds connection settings for internal/session's redis-backed
// ResumeStore. cmd/ibuki does not read these settings and constructs no
// ResumeStore.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StatsConfig configures the gorm-backed stats repository (internal/stats).
// Driver is "sqlite" or "postgres" — sqlite is the default and tested path
// (see DESIGN.md); "postgres" makes cmd/ibuki open gorm's postgres driver.
type StatsConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Load reads the env file (if present) plus environment variables and
// returns a validated AppConfig, matching the teacher's
// InitConfig/GetApplicationConfig split.
func Load() (*AppConfig, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")
	if path := os.Getenv("ENV_PATH"); path != "" {
		v.SetConfigFile(path)
	}
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, ibukierr.Wrap(ibukierr.KindMalformed, "reading config file", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ibukierr.Wrap(ibukierr.KindMalformed, "unmarshalling config", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, ibukierr.Wrap(ibukierr.KindInvalidParameter, "validating config", err)
	}

	cfg.ResumeDefaultTimeout = time.Duration(cfg.ResumeDefaultTimeoutSec) * time.Second
	cfg.StatsInterval = time.Duration(cfg.StatsIntervalSec) * time.Second
	cfg.PlayerUpdateInterval = time.Duration(cfg.PlayerUpdateIntervalSec) * time.Second
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "ibuki")
	v.SetDefault("VERSION", "4")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 2333)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE_PATH", "")

	v.SetDefault("REST_TOKEN", "youshallnotpass")
	v.SetDefault("RESUME_SECRET", "change-me-in-production")
	v.SetDefault("RESUME_DEFAULT_TIMEOUT_SEC", 60)

	v.SetDefault("DEFAULT_SAMPLE_RATE", 48000)
	v.SetDefault("DEFAULT_CHANNELS", 2)

	v.SetDefault("STATS_INTERVAL_SEC", 60)
	v.SetDefault("PLAYER_UPDATE_INTERVAL_SEC", 5)

	v.SetDefault("REDIS__ADDR", "")
	v.SetDefault("REDIS__PASSWORD", "")
	v.SetDefault("REDIS__DB", 0)

	v.SetDefault("STATS_DB__DRIVER", "sqlite")
	v.SetDefault("STATS_DB__DSN", "ibuki-stats.db")
}
