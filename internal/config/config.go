package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the server and the CLI.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	Client   ClientConfig   `mapstructure:"client"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// Tenant is the value written to the device_id column. Every device shares it.
	Tenant string `mapstructure:"tenant"`
}

// Supported database drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

// Enabled reports whether export uploads can be served.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// ClientConfig configures setsctl.
type ClientConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	DataPath       string        `mapstructure:"data_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RetryInterval  time.Duration `mapstructure:"retry_interval"`
}

// LoadConfig reads configuration from path/config.yaml and environment variables.
// A missing file is not an error; nested keys map to env vars with "." replaced by "_"
// (server.address -> SERVER_ADDRESS).
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.tenant", "shared")
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "")
	v.SetDefault("database.name", "sets_tracker")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.presign_expiry", "15m")
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.data_path", "sets-tracker.db")
	v.SetDefault("client.request_timeout", "15s")
	v.SetDefault("client.retry_interval", "30s")

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// Env vars and defaults are enough.
		err = nil
	} else if err != nil {
		return
	}

	// Duration strings ("15m", "30s") decode straight into time.Duration fields.
	if err = v.Unmarshal(&config); err != nil {
		return
	}

	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))
	if config.Database.Driver != DriverMongo && config.Database.Driver != DriverPostgres {
		return config, errors.New("database.driver must be \"mongo\" or \"postgres\"")
	}
	if config.Server.Tenant == "" {
		config.Server.Tenant = "shared"
	}
	return config, nil
}
