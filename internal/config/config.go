package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Auth      AuthConfig      `toml:"auth"`
	WebSocket WebSocketConfig `toml:"websocket"`
	Booking   BookingConfig   `toml:"booking"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Broker    BrokerConfig    `toml:"broker"`
	Telemetry TelemetryConfig `toml:"telemetry"`

	// Филиалы для driver = "memory"; для postgres игнорируются
	SeedBranches []SeedBranch `toml:"seed_branch"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Driver          string `toml:"driver"` // postgres | memory
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type AuthConfig struct {
	JWTSecret  string `toml:"jwt_secret"`
	CookieName string `toml:"cookie_name"`
}

type WebSocketConfig struct {
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
	SendBuffer           int `toml:"send_buffer"`
	WriteTimeoutSeconds  int `toml:"write_timeout_seconds"`
}

type BookingConfig struct {
	InitialStatus     string `toml:"initial_status"` // confirmed | pending
	LenientCompletion bool   `toml:"lenient_completion"`
}

// InitialBookingStatus статус, с которым создается новое бронирование
func (c BookingConfig) InitialBookingStatus() domain.BookingStatus {
	return domain.BookingStatus(c.InitialStatus)
}

type RateLimitConfig struct {
	Enabled           bool `toml:"enabled"`
	RequestsPerMinute int  `toml:"requests_per_minute"`
	Burst             int  `toml:"burst"`

	// Адреса или подсети обратных прокси, которым доверяется X-Forwarded-For
	TrustedProxies []string `toml:"trusted_proxies"`
}

type BrokerConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

type TelemetryConfig struct {
	Enabled      bool   `toml:"enabled"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	Insecure     bool   `toml:"insecure"`
}

// SeedBranch филиал, который загружается в хранилище memory при старте
type SeedBranch struct {
	ID                         int64  `toml:"id"`
	RestaurantID               int64  `toml:"restaurant_id"`
	Address                    string `toml:"address"`
	City                       string `toml:"city"`
	OpeningTime                string `toml:"opening_time"` // "09:00"
	ClosingTime                string `toml:"closing_time"` // "22:00"
	TablesCount                int    `toml:"tables_count"`
	SeatsCount                 int    `toml:"seats_count"`
	BookingIntervalMinutes     int    `toml:"booking_interval_minutes"`
	ReservationDurationMinutes int    `toml:"reservation_duration_minutes"`
}

// ToDomain конвертирует описание в domain.Branch с проверкой инвариантов
func (s SeedBranch) ToDomain() (domain.Branch, error) {
	opening, err := types.NewTimeStringFromString(s.OpeningTime)
	if err != nil {
		return domain.Branch{}, fmt.Errorf("%w: seed_branch %d opening_time: %v", ErrInvalidConfig, s.ID, err)
	}
	closing, err := types.NewTimeStringFromString(s.ClosingTime)
	if err != nil {
		return domain.Branch{}, fmt.Errorf("%w: seed_branch %d closing_time: %v", ErrInvalidConfig, s.ID, err)
	}

	branch := domain.Branch{
		ID:                         s.ID,
		RestaurantID:               s.RestaurantID,
		Address:                    s.Address,
		City:                       s.City,
		OpeningTime:                opening,
		ClosingTime:                closing,
		TablesCount:                s.TablesCount,
		SeatsCount:                 s.SeatsCount,
		BookingIntervalMinutes:     s.BookingIntervalMinutes,
		ReservationDurationMinutes: s.ReservationDurationMinutes,
	}
	if err := branch.Validate(); err != nil {
		return domain.Branch{}, fmt.Errorf("%w: seed_branch %d: %v", ErrInvalidConfig, s.ID, err)
	}
	return branch, nil
}

// Load читает .env (если есть), TOML-файл и переменные окружения, затем валидирует результат
func Load(path string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default конфигурация для локального запуска без базы данных
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:          DriverMemory,
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "table-reservation",
		},
		Auth: AuthConfig{
			CookieName: "token",
		},
		WebSocket: WebSocketConfig{
			SweepIntervalSeconds: 30,
			SendBuffer:           16,
			WriteTimeoutSeconds:  10,
		},
		Booking: BookingConfig{
			InitialStatus: string(domain.StatusConfirmed),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
			Burst:             20,
		},
		Broker: BrokerConfig{
			Exchange: "bookings",
		},
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: DB_PORT: %v", ErrInvalidConfig, err)
		}
		c.Database.Port = port
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.DBName = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		c.Broker.URL = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.OTLPEndpoint = v
	}
	return nil
}

// Validate проверяет обязательные поля и допустимые значения
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("%w: database.host and database.dbname are required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database.driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret is required", ErrInvalidConfig)
	}

	switch c.Booking.InitialBookingStatus() {
	case domain.StatusConfirmed, domain.StatusPending:
	default:
		return fmt.Errorf("%w: booking.initial_status must be confirmed or pending, got %q",
			ErrInvalidConfig, c.Booking.InitialStatus)
	}

	if c.WebSocket.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("%w: websocket.sweep_interval_seconds must be positive", ErrInvalidConfig)
	}
	if c.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("%w: websocket.send_buffer must be positive", ErrInvalidConfig)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("%w: rate_limit values must be positive", ErrInvalidConfig)
	}

	if c.Broker.Enabled && c.Broker.URL == "" {
		return fmt.Errorf("%w: broker.url is required when broker is enabled", ErrInvalidConfig)
	}

	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		return fmt.Errorf("%w: telemetry.otlp_endpoint is required when telemetry is enabled", ErrInvalidConfig)
	}

	return nil
}
