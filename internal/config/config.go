package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// ErrAPIBaseURLMissing 表示未配置笔记 API 地址。
var ErrAPIBaseURLMissing = errors.New("API_URI is required")

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Session SessionConfig
	Display DisplayConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// Load 从环境变量加载配置，所有非法变量会一并返回。
func Load() (*Config, error) {
	var errs *multierror.Error

	server, err := loadServerConfig()
	errs = multierror.Append(errs, err)

	api, err := loadAPIConfig()
	errs = multierror.Append(errs, err)

	session, err := loadSessionConfig()
	errs = multierror.Append(errs, err)

	display, err := loadDisplayConfig()
	errs = multierror.Append(errs, err)

	metrics, err := loadMetricsConfig()
	errs = multierror.Append(errs, err)

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		API:     api,
		Session: session,
		Display: display,
		Log:     loadLogConfig(),
		Metrics: metrics,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr     string
	LoginURL string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	loginURL := getEnvOrDefault("LOGIN_URL", "/login")

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, LoginURL: loginURL}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, LoginURL: loginURL}, nil
}

// APIConfig 描述外部笔记 API 的访问配置。
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Validate 检查服务端运行所必需的字段。
func (c APIConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrAPIBaseURLMissing
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("invalid API_URI value %q: must be an http(s) URL", c.BaseURL)
	}
	return nil
}

func loadAPIConfig() (APIConfig, error) {
	timeout, err := parseOptionalIntEnv("API_TIMEOUT_SECONDS")
	if err != nil {
		return APIConfig{}, err
	}
	timeoutSeconds := 10
	if timeout != nil {
		if *timeout < 1 {
			return APIConfig{}, fmt.Errorf("invalid API_TIMEOUT_SECONDS value %d: must be positive", *timeout)
		}
		timeoutSeconds = *timeout
	}

	return APIConfig{
		BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("API_URI")), "/"),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// SessionConfig 描述保存 bearer token 的 cookie。
type SessionConfig struct {
	CookieName string
	Secure     bool
}

func loadSessionConfig() (SessionConfig, error) {
	secure, err := parseBoolEnv("SESSION_COOKIE_SECURE", false)
	if err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{
		CookieName: getEnvOrDefault("SESSION_COOKIE", "token"),
		Secure:     secure,
	}, nil
}

// DisplayConfig 描述页面展示相关配置。
type DisplayConfig struct {
	Location *time.Location
}

func loadDisplayConfig() (DisplayConfig, error) {
	name := getEnvOrDefault("DISPLAY_TIMEZONE", "Local")
	loc, err := time.LoadLocation(name)
	if err != nil {
		return DisplayConfig{}, fmt.Errorf("invalid DISPLAY_TIMEZONE value %q: %w", name, err)
	}
	return DisplayConfig{Location: loc}, nil
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
	}
}

// MetricsConfig 描述 Prometheus 指标暴露。
type MetricsConfig struct {
	Enabled bool
}

func loadMetricsConfig() (MetricsConfig, error) {
	enabled, err := parseBoolEnv("METRICS_ENABLED", true)
	if err != nil {
		return MetricsConfig{}, err
	}
	return MetricsConfig{Enabled: enabled}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
