// Package config loads application settings from configs/config.yml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TODO_AUTH_SECRET.
const EnvPrefix = "TODO"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	Swagger           bool          `mapstructure:"swagger"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type AuthConfig struct {
	Secret            string        `mapstructure:"secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	BcryptCost        int           `mapstructure:"bcrypt_cost"`
	MinPasswordLength int           `mapstructure:"min_password_length"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.swagger", true)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "app.db")
	v.SetDefault("db.query_timeout", 5*time.Second)
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", time.Duration(0))
	v.SetDefault("auth.sweep_interval", time.Minute)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.min_password_length", 6)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// legacyEnv maps the variable names the service has always honoured onto keys.
var legacyEnv = map[string]string{
	"server.port": "PORT",
	"auth.secret": "JWT_SECRET",
	"db.dsn":      "DATABASE_URL",
}

// Load reads the config file at path (or configs/config.yml when path is
// empty; a missing default file is not an error), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		// prefixed names win over legacy ones
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that would prevent the service from starting.
func (c *Config) Validate() error {
	switch {
	case c.Auth.Secret == "":
		return errors.New("config: auth.secret is required (TODO_AUTH_SECRET or JWT_SECRET)")
	case c.DB.Driver != "sqlite" && c.DB.Driver != "postgres":
		return fmt.Errorf("config: unknown db.driver %q", c.DB.Driver)
	case c.DB.Driver == "postgres" && c.DB.DSN == "":
		return errors.New("config: db.dsn is required for postgres")
	case c.DB.QueryTimeout < 0:
		return errors.New("config: db.query_timeout must not be negative")
	case c.Auth.TokenTTL < 0:
		return errors.New("config: auth.token_ttl must not be negative")
	case c.Auth.TokenTTL > 0 && c.Auth.SweepInterval <= 0:
		return errors.New("config: auth.sweep_interval must be positive when tokens expire")
	case c.Auth.MinPasswordLength < 1:
		return errors.New("config: auth.min_password_length must be at least 1")
	case c.Server.ShutdownTimeout <= 0:
		return errors.New("config: server.shutdown_timeout must be positive")
	}
	return nil
}
