package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort    = 9999
	DefaultBacklog = 64
)

// ErrInvalidArgs возвращается при неверных позиционных аргументах запуска.
var ErrInvalidArgs = errors.New("invalid startup arguments")

type Config struct {
	Env    string
	Server ServerConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	Backlog       int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	ShutdownGrace time.Duration
}

type LogConfig struct {
	Level slog.Level
}

// Load загружает конфигурацию сервиса из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	port, err := parsePortEnv("SERVER_PORT", DefaultPort)
	if err != nil {
		return cfg, err
	}

	backlog, err := parseIntEnv("SERVER_BACKLOG", DefaultBacklog)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	shutdownGrace, err := parseDurationEnv("SERVER_SHUTDOWN_GRACE", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:          getEnv("SERVER_HOST", "0.0.0.0"),
		Port:          port,
		Backlog:       backlog,
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
		IdleTimeout:   idleTimeout,
		ShutdownGrace: shutdownGrace,
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return cfg, err
	}
	cfg.Log = LogConfig{Level: level}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ApplyArgs накладывает позиционные аргументы `<port> <backlog>` поверх конфигурации.
// Допустимо либо ноль, либо ровно два аргумента.
func ApplyArgs(cfg Config, args []string) (Config, error) {
	switch len(args) {
	case 0:
		return cfg, nil
	case 2:
	default:
		return cfg, fmt.Errorf("%w: expected <port> <backlog> or nothing, got %d argument(s)", ErrInvalidArgs, len(args))
	}

	port, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return cfg, fmt.Errorf("%w: port must be an integer: %v", ErrInvalidArgs, err)
	}
	if port < 0 || port > 65535 {
		return cfg, fmt.Errorf("%w: port must be between 0 and 65535", ErrInvalidArgs)
	}

	backlog, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil {
		return cfg, fmt.Errorf("%w: backlog must be an integer: %v", ErrInvalidArgs, err)
	}
	if backlog <= 0 {
		return cfg, fmt.Errorf("%w: backlog must be greater than 0", ErrInvalidArgs)
	}

	cfg.Server.Port = port
	cfg.Server.Backlog = backlog
	return cfg, nil
}

// Addr возвращает адрес для прослушивания в виде host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 0 and 65535")
	}

	if c.Server.Backlog <= 0 {
		return fmt.Errorf("SERVER_BACKLOG must be greater than 0")
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be greater than 0")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be greater than 0")
	}

	if c.Server.ShutdownGrace <= 0 {
		return fmt.Errorf("SERVER_SHUTDOWN_GRACE must be greater than 0")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

// parsePortEnv допускает порт 0: система выберет свободный порт.
func parsePortEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed < 0 || parsed > 65535 {
		return 0, fmt.Errorf("%s must be between 0 and 65535", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
