package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/providers"
	"github.com/spf13/viper"
)

// Env is a structure that holds all the environment variables that are used in the app.
// Feature toggles are strings: only a case-insensitive "true" enables a source.
type Env struct {
	TelegramBotToken string        `mapstructure:"TOKEN"`
	TelegramChatID   string        `mapstructure:"CHAT_ID"`
	StockPrice       string        `mapstructure:"STOCK_PRICE"`
	VNIndex          string        `mapstructure:"VNINDEX"`
	GoldPrice        string        `mapstructure:"GOLD_PRICE"`
	ExchangeRate     string        `mapstructure:"EXCHANGE_RATE"`
	CryptoPrice      string        `mapstructure:"CRYPTO_PRICE"`
	StockSymbols     string        `mapstructure:"STOCK"`
	CryptoSymbols    string        `mapstructure:"CRYPTO"`
	ExchangeSymbols  string        `mapstructure:"EXCHANGE"`
	GoldSymbols      string        `mapstructure:"GOLD"`
	HTTPTimeout      time.Duration `mapstructure:"HTTP_TIMEOUT"`
	TelegramTimeout  time.Duration `mapstructure:"TELEGRAM_TIMEOUT"`
	RetryAttempts    uint          `mapstructure:"RETRY_ATTEMPTS"`
	RetryDelay       time.Duration `mapstructure:"RETRY_DELAY"`
	SentryDSN        string        `mapstructure:"SENTRY_DSN"`
	DryRun           string        `mapstructure:"DRY_RUN"`
	StrictExit       string        `mapstructure:"STRICT_EXIT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

// envDefaults are the values used when neither the environment nor the .env file sets the key.
var envDefaults = map[string]any{
	"TOKEN":            "",
	"CHAT_ID":          "",
	"STOCK_PRICE":      "false",
	"VNINDEX":          "false",
	"GOLD_PRICE":       "false",
	"EXCHANGE_RATE":    "false",
	"CRYPTO_PRICE":     "false",
	"STOCK":            "VCB,VIC,HPG",
	"CRYPTO":           "BTC,ETH",
	"EXCHANGE":         "USD,EUR,JPY",
	"GOLD":             "SJC",
	"HTTP_TIMEOUT":     "10s",
	"TELEGRAM_TIMEOUT": "15s",
	"RETRY_ATTEMPTS":   3,
	"RETRY_DELAY":      "1s",
	"SENTRY_DSN":       "",
	"DRY_RUN":          "false",
	"STRICT_EXIT":      "false",
	"LOG_LEVEL":        "info",
}

// LoadEnv reads the process environment and the optional dotenv file. The environment wins.
func LoadEnv(dotenv string) (*Env, error) {
	v := viper.New()
	for k, d := range envDefaults {
		v.SetDefault(k, d)
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("error binding env %s: %w", k, err)
		}
	}

	if dotenv != "" {
		if _, err := os.Stat(dotenv); err == nil {
			v.SetConfigFile(dotenv)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading %s: %w", dotenv, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading %s: %w", dotenv, err)
		}
	}

	var env Env
	if err := v.Unmarshal(&env); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	return &env, nil
}

// Config is the validated configuration of one run.
type Config struct {
	env *Env // Holds all the environment variables that are used in the app

	TelegramToken  string
	TelegramChatID string

	Enabled   map[string]bool // source name => enabled
	Stocks    []string        `validate:"dive,alphanum,max=10"`
	Crypto    []string        `validate:"dive,alphanum,max=15"`
	Exchange  []string        `validate:"dive,len=3,alpha"`
	GoldTypes []string        // informational, only SJC is supported

	HTTPTimeout     time.Duration `validate:"gt=0"`
	TelegramTimeout time.Duration `validate:"gt=0"`
	Retry           collector.RetryPolicy

	SentryDSN  string `validate:"omitempty,url"`
	DryRun     bool
	StrictExit bool
	LogLevel   slog.Level
}

// NewConfig creates a new Config object from the given Env and validates it.
func NewConfig(env *Env) (*Config, error) {
	if env == nil {
		return nil, errors.New("empty environment")
	}

	level, err := parseLogLevel(env.LogLevel)
	if err != nil {
		return nil, err
	}
	if env.RetryAttempts < 1 || env.RetryAttempts > 10 {
		return nil, fmt.Errorf("RETRY_ATTEMPTS must be between 1 and 10, got %d", env.RetryAttempts)
	}
	if env.RetryDelay < 0 {
		return nil, fmt.Errorf("RETRY_DELAY must not be negative, got %s", env.RetryDelay)
	}

	c := &Config{
		env:            env,
		TelegramToken:  strings.TrimSpace(env.TelegramBotToken),
		TelegramChatID: strings.TrimSpace(env.TelegramChatID),
		Enabled: map[string]bool{
			providers.SourceGold:     isTrue(env.GoldPrice),
			providers.SourceStock:    isTrue(env.StockPrice),
			providers.SourceVNIndex:  isTrue(env.VNIndex),
			providers.SourceExchange: isTrue(env.ExchangeRate),
			providers.SourceCrypto:   isTrue(env.CryptoPrice),
		},
		Stocks:          splitList(env.StockSymbols),
		Crypto:          splitList(env.CryptoSymbols),
		Exchange:        splitList(env.ExchangeSymbols),
		GoldTypes:       splitList(env.GoldSymbols),
		HTTPTimeout:     env.HTTPTimeout,
		TelegramTimeout: env.TelegramTimeout,
		Retry: collector.RetryPolicy{
			Attempts: env.RetryAttempts,
			Delay:    env.RetryDelay,
			MaxDelay: 10 * time.Second,
		},
		SentryDSN:  strings.TrimSpace(env.SentryDSN),
		DryRun:     isTrue(env.DryRun),
		StrictExit: isTrue(env.StrictExit),
		LogLevel:   level,
	}

	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// ServiceConfig returns the collector params of every source.
func (c *Config) ServiceConfig() collector.ServiceConfig {
	return collector.ServiceConfig{
		providers.SourceGold:     collector.EmptyParams{},
		providers.SourceStock:    collector.SymbolParams{Symbols: c.Stocks},
		providers.SourceVNIndex:  collector.EmptyParams{},
		providers.SourceExchange: collector.CurrencyParams{Currencies: c.Exchange},
		providers.SourceCrypto:   collector.SymbolParams{Symbols: c.Crypto},
	}
}

// EnabledSources returns the names of the enabled sources in message order.
func (c *Config) EnabledSources() []string {
	return lo.Filter(sourceOrder, func(s string, _ int) bool {
		return c.Enabled[s]
	})
}

// sourceOrder is the registration order of the providers.
var sourceOrder = []string{
	providers.SourceGold,
	providers.SourceStock,
	providers.SourceVNIndex,
	providers.SourceExchange,
	providers.SourceCrypto,
}

// splitList splits "VCB, vic,,HPG,VCB" into ["VCB", "VIC", "HPG"].
func splitList(s string) []string {
	items := lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.ToUpper(strings.TrimSpace(item))
	})
	return lo.Uniq(lo.Compact(items))
}

func isTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

func parseLogLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return l, nil
}
