package app

import (
	"errors"
	"os"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config — настройки запуска точки продаж. Пустой PostgresDSN означает
// in-memory хранилище (режим разработки), пустые KafkaBrokers — работу
// без брокера.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	PostgresDSN string `env:"POS_POSTGRES_DSN"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	SaleTopic    string   `env:"KAFKA_SALE_TOPIC"`

	// DefaultRate — стартовый курс Bs/$ до первой загрузки настроек.
	DefaultRate decimal.Decimal `env:"DEFAULT_EXCHANGE_RATE" envDefault:"37.5"`

	// DemoSeed включает демонстрационный каталог телефонов.
	DemoSeed bool `env:"DEMO_SEED" envDefault:"false"`
}

// LoadConfig читает .env (если есть) и переменные окружения.
func LoadConfig(envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	if !cfg.DefaultRate.IsPositive() {
		cfg.DefaultRate = decimal.NewFromFloat(37.5)
	}
	return cfg, nil
}
