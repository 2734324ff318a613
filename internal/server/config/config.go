// Package config собирает конфигурацию сервера:
// значения по умолчанию, затем переменные окружения, затем флаги.
// Итоговый Config неизменяемый и передается компонентам при создании,
// глобальное состояние не используется.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config содержит настройки сервера authd.
//
// Поля:
//   - Address: адрес HTTP сервера.
//   - DatabasePath: путь к файлу SQLite (":memory:" для тестов).
//   - JWTSecret: HMAC секрет для подписи токенов (HS256). Обязателен.
//   - AccessTokenTTL / RefreshTokenTTL: время жизни токенов.
//   - AdminSecret: секрет для самоназначения роли admin при регистрации.
//     Пустое значение полностью отключает регистрацию админов.
type Config struct {
	Address         string
	DatabasePath    string
	JWTSecret       string
	AdminSecret     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// LoadDefaults заполняет Config значениями по умолчанию для разработки
func (c *Config) LoadDefaults() {
	c.Address = ":8080"
	c.DatabasePath = "authd.db"
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 168 * time.Hour
}

// parseEnv накладывает значения из переменных окружения
func (c *Config) parseEnv() error {
	if v, ok := os.LookupEnv("AUTHD_ADDRESS"); ok {
		c.Address = v
	}
	if v, ok := os.LookupEnv("AUTHD_DATABASE"); ok {
		c.DatabasePath = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		c.JWTSecret = v
	}
	if v, ok := os.LookupEnv("ADMIN_SECRET"); ok {
		c.AdminSecret = v
	}
	if v, ok := os.LookupEnv("ACCESS_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ACCESS_TTL: %w", err)
		}
		c.AccessTokenTTL = d
	}
	if v, ok := os.LookupEnv("REFRESH_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REFRESH_TTL: %w", err)
		}
		c.RefreshTokenTTL = d
	}
	return nil
}

// parseFlags накладывает значения из флагов командной строки
func (c *Config) parseFlags(fs *flag.FlagSet, args []string) error {
	fs.StringVar(&c.Address, "a", c.Address, "address and port to run server")
	fs.StringVar(&c.DatabasePath, "d", c.DatabasePath, "path to SQLite database file")
	fs.StringVar(&c.JWTSecret, "s", c.JWTSecret, "JWT signing secret")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "refresh token lifetime")

	return fs.Parse(args)
}

// Validate проверяет, что обязательные настройки заданы
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (JWT_SECRET or -s)")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("access token TTL must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("refresh token TTL must be positive")
	}
	return nil
}

// Load строит Config: defaults, затем окружение, затем флаги
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := cfg.parseEnv(); err != nil {
		return nil, err
	}

	if err := cfg.parseFlags(fs, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
