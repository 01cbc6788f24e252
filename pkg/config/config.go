package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var config = viper.New()

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Minio struct {
		Endpoint   string `mapstructure:"ENDPOINT"`
		AccessKey  string `mapstructure:"ACCESS_KEY"`
		SecretKey  string `mapstructure:"SECRET_KEY"`
		Secure     bool   `mapstructure:"SECURE"`
		BucketName string `mapstructure:"BUCKET_NAME"`
	} `mapstructure:"MINIO"`
	Points struct {
		// Points awarded per liter, keyed by oil type. The award is fixed
		// on the disposal record at submission time, so a later rate change
		// never rewrites history.
		Rates        map[string]int64 `mapstructure:"RATES"`
		SnapshotTTL  time.Duration    `mapstructure:"SNAPSHOT_TTL"`
		CodeAlphabet string           `mapstructure:"CODE_ALPHABET"`
		CodeLength   int              `mapstructure:"CODE_LENGTH"`
		CodeMaxRetry int              `mapstructure:"CODE_MAX_RETRY"`
	} `mapstructure:"POINTS"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

func setDefaults() {
	config.SetDefault("APP_ENV", "development")
	config.SetDefault("APP_NAME", "oilcycle")
	config.SetDefault("HTTP_SERVER.ADDR", "8080")
	config.SetDefault("DATABASE.TYPE", "postgres")

	config.SetDefault("POINTS.RATES", map[string]int64{
		"motor_oil":          10,
		"cooking_oil":        8,
		"hydraulic_oil":      12,
		"transmission_fluid": 11,
		"other":              5,
	})
	config.SetDefault("POINTS.SNAPSHOT_TTL", 5*time.Minute)
	// Alphabet excludes 0/O and 1/I so codes survive being read aloud.
	config.SetDefault("POINTS.CODE_ALPHABET", "ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	config.SetDefault("POINTS.CODE_LENGTH", 8)
	config.SetDefault("POINTS.CODE_MAX_RETRY", 5)
}

func LoadConfig() *Config {
	config.SetConfigName("config")
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	setDefaults()

	if err := config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			zap.L().Error("failed to read config file", zap.Error(err))
			os.Exit(1)
		}
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		zap.L().Error("failed to unmarshal config", zap.Error(err))
		os.Exit(1)
	}

	return &cfg
}

// BaseRate returns the per-liter award for an oil type, falling back to the
// "other" rate for anything not in the table.
func (c *Config) BaseRate(oilType string) int64 {
	if rate, ok := c.Points.Rates[oilType]; ok {
		return rate
	}
	return c.Points.Rates["other"]
}
