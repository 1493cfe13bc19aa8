package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"hikari/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Backend    BackendConfig    `yaml:"backend"`
	Session    SessionConfig    `yaml:"session"`
	Booking    BookingConfig    `yaml:"booking"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// BackendConfig points the client at the reservation REST API.
type BackendConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Timeout   time.Duration   `yaml:"timeout"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type EndpointsConfig struct {
	Tables       string `yaml:"tables"`
	Availability string `yaml:"availability"`
	Booking      string `yaml:"booking"`
	GuestBooking string `yaml:"guest_booking"`
	Me           string `yaml:"me"`
	Login        string `yaml:"login"`
	Register     string `yaml:"register"`
	Logout       string `yaml:"logout"`
	MyBookings   string `yaml:"my_bookings"`
	MyBooking    string `yaml:"my_booking"`
	Manager      string `yaml:"manager"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// SessionConfig mirrors what the server renders into the page.
type SessionConfig struct {
	Authenticated bool   `yaml:"authenticated"`
	CSRFCookie    string `yaml:"csrf_cookie"`
}

type BookingConfig struct {
	MaxOnlineGuests    int    `yaml:"max_online_guests"`
	DefaultDurationMin int    `yaml:"default_duration_min"`
	FallbackTables     string `yaml:"fallback_tables"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type CacheConfig struct {
	TablesTTL time.Duration `yaml:"tables_ttl"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("backend base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend base_url %q is not an absolute URL", c.Backend.BaseURL)
	}
	if c.Booking.MaxOnlineGuests <= 0 {
		return errors.New("booking max_online_guests must be positive")
	}
	if c.Backend.RateLimit.RPS < 0 {
		return errors.New("backend rate_limit rps must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "hikari-reserve"
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 10 * time.Second
	}

	e := &c.Backend.Endpoints
	setDefault(&e.Tables, "/api/layout/tables/")
	setDefault(&e.Availability, "/api/availability/")
	setDefault(&e.Booking, "/api/bookings/")
	setDefault(&e.GuestBooking, "/api/bookings/")
	setDefault(&e.Me, "/api/auth/me/")
	setDefault(&e.Login, "/api/auth/login/")
	setDefault(&e.Register, "/api/auth/register/")
	setDefault(&e.Logout, "/api/auth/logout/")
	setDefault(&e.MyBookings, "/api/me/bookings-by-status/")
	setDefault(&e.MyBooking, "/api/me/bookings/")
	setDefault(&e.Manager, "/api/manager/")

	setDefault(&c.Session.CSRFCookie, models.CSRFCookieName)

	if c.Booking.MaxOnlineGuests == 0 {
		c.Booking.MaxOnlineGuests = models.MaxOnlineGuests
	}
	if c.Booking.DefaultDurationMin == 0 {
		c.Booking.DefaultDurationMin = models.DefaultDurationMin
	}

	if c.Cache.TablesTTL == 0 {
		c.Cache.TablesTTL = 5 * time.Minute
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	setDefault(&c.Exports.Path, "exports")
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
