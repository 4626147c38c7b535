package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	DB         DBConfig         `mapstructure:"db"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Wallet     WalletConfig     `mapstructure:"wallet"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" validate:"required"`
}

type DBConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	MaxConns int32  `mapstructure:"max_conns" validate:"gte=1"`
}

// DSN builds the Postgres connection URL. Credentials are escaped.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

const (
	NotifyAsynq  = "asynq"
	NotifyInline = "inline"
	NotifyNone   = "none"
)

type NotifyConfig struct {
	Mode string `mapstructure:"mode" validate:"oneof=asynq inline none"`
}

type WalletConfig struct {
	FeeThreshold            float64 `mapstructure:"fee_threshold" validate:"lte=0"`
	WithdrawalCooldownHours int     `mapstructure:"withdrawal_cooldown_hours" validate:"gte=0"`
}

func (c WalletConfig) Threshold() decimal.Decimal {
	return decimal.NewFromFloat(c.FeeThreshold)
}

type SettlementConfig struct {
	FeeRate float64 `mapstructure:"fee_rate" validate:"gte=0,lt=1"`
}

func (c SettlementConfig) Rate() decimal.Decimal {
	return decimal.NewFromFloat(c.FeeRate)
}

type CacheConfig struct {
	ProfileTTL time.Duration `mapstructure:"profile_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "herohub")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("notify.mode", NotifyAsynq)
	v.SetDefault("wallet.fee_threshold", -100)
	v.SetDefault("wallet.withdrawal_cooldown_hours", 24)
	v.SetDefault("settlement.fee_rate", 0.10)
	v.SetDefault("cache.profile_ttl", 30*time.Second)
}

// Load reads .env (if present), an optional config.yaml and the environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// PORT is the conventional name on most hosts
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		log.Printf("using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
