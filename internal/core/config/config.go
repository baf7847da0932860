package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"sparkpay-sync/internal/core/proxy"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// SparkPay holds the store API configuration.
	SparkPay SparkPayConfig `mapstructure:",squash"`

	// Redis holds the cursor store configuration.
	Redis RedisConfig `mapstructure:",squash"`

	// Sync holds the incremental order sync settings.
	Sync SyncConfig `mapstructure:",squash"`

	// Proxy holds the optional outbound proxy settings.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// SparkPayConfig holds the credentials for the SparkPay store.
type SparkPayConfig struct {
	// StoreURL is the base URL of the store, e.g. https://mystore.com.
	StoreURL string `mapstructure:"SPARKPAY_STORE_URL" required:"true"`
	// AuthToken is sent verbatim in the X-AC-Auth-Token header.
	AuthToken string `mapstructure:"SPARKPAY_AUTH_TOKEN" required:"true"`
	// TimeoutSeconds bounds each API call. Zero leaves the transport default in place.
	TimeoutSeconds int `mapstructure:"SPARKPAY_TIMEOUT_SECONDS" default:"0"`
}

// Timeout returns the configured request timeout.
func (c SparkPayConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedisConfig holds the Redis connection string.
type RedisConfig struct {
	// URL has the form redis://[:password@]host[:port][/database].
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// SyncConfig holds settings for the order sync job.
type SyncConfig struct {
	// InitialSince is the cursor used when none has been stored yet.
	InitialSince string `mapstructure:"SYNC_INITIAL_SINCE" default:"1970-01-01T00:00:00Z"`
}

// ProxyConfig holds the upstream proxy used for outbound API calls.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED"`
	Hostname string `mapstructure:"PROXY_HOSTNAME"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// Settings converts the config block into proxy.Settings.
func (c ProxyConfig) Settings() proxy.Settings {
	return proxy.Settings{
		Enabled:  c.Enabled,
		Hostname: c.Hostname,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
	}
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags binds every tagged field to its env var and registers its default.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key == "" {
			continue
		}

		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}

		if defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
