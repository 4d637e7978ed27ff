package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// 手机号校验策略
const (
	PhonePolicyStrict  = "strict"  // 印度 10 位手机号，首位 6-9
	PhonePolicyLenient = "lenient" // 数字、空格、-、+、( )
)

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"contact-intake"`

	// CORS 白名单，逗号分隔
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://www.amitbuildingsolutions.in,https://amitbuildingsolutions.in"`

	// Google Sheets 配置
	SheetsProvider      string        `env:"SHEETS_PROVIDER" envDefault:"google"` // google, mock
	SheetID             string        `env:"GOOGLE_SHEET_ID"`
	SheetName           string        `env:"GOOGLE_SHEET_NAME" envDefault:"Contact Submissions - Amit Construction"`
	GoogleProjectID     string        `env:"GOOGLE_PROJECT_ID"`
	GooglePrivateKeyID  string        `env:"GOOGLE_PRIVATE_KEY_ID"`
	GooglePrivateKey    string        `env:"GOOGLE_PRIVATE_KEY"`
	GoogleClientEmail   string        `env:"GOOGLE_CLIENT_EMAIL"`
	GoogleClientID      string        `env:"GOOGLE_CLIENT_ID"`
	SheetsAppendTimeout time.Duration `env:"SHEETS_APPEND_TIMEOUT" envDefault:"10s"`

	// 表单校验策略
	PhonePolicy        string `env:"PHONE_POLICY" envDefault:"strict"`
	MinNameLength      int    `env:"MIN_NAME_LENGTH" envDefault:"3"`
	MinMessageLength   int    `env:"MIN_MESSAGE_LENGTH" envDefault:"10"`
	ExposeErrorDetails bool   `env:"EXPOSE_ERROR_DETAILS" envDefault:"false"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// Redis 配置，REDIS_ADDR 为空时不启用限流
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"contact"`

	// 速率限制配置
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"5"`

	// 验证码配置
	CaptchaProvider string        `env:"CAPTCHA_PROVIDER" envDefault:"none"` // none, aliyun
	CaptchaSceneID  string        `env:"CAPTCHA_SCENE_ID"`
	CaptchaEndpoint string        `env:"CAPTCHA_ENDPOINT" envDefault:"captcha.cn-hangzhou.aliyuncs.com"`
	CaptchaTimeout  time.Duration `env:"CAPTCHA_TIMEOUT" envDefault:"5s"`

	// OpenTelemetry 配置
	OTelEnabled        bool          `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTLPInsecure       bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"` // 端点无 scheme 时生效
	OTelSampleRatio    float64       `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`
	OTelMetricInterval time.Duration `env:"OTEL_METRIC_EXPORT_INTERVAL" envDefault:"15s"`
	ServiceVersion     string        `env:"SERVICE_VERSION" envDefault:"dev"`

	// Snowflake 节点，用于生成请求 ID
	NodeID int64 `env:"NODE_ID" envDefault:"1"`
}

// Load 读取 .env（可选）与环境变量，并完成校验
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	// .env 中的私钥通常以字面量 \n 保存
	cfg.GooglePrivateKey = strings.ReplaceAll(cfg.GooglePrivateKey, `\n`, "\n")
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.SheetsProvider {
	case "google":
		if c.SheetID == "" {
			return errors.New("GOOGLE_SHEET_ID is required")
		}
		if c.GoogleClientEmail == "" || c.GooglePrivateKey == "" {
			return errors.New("GOOGLE_CLIENT_EMAIL and GOOGLE_PRIVATE_KEY are required")
		}
	case "mock":
	default:
		return fmt.Errorf("unsupported SHEETS_PROVIDER: %s", c.SheetsProvider)
	}

	if c.SheetName == "" {
		return errors.New("GOOGLE_SHEET_NAME must not be empty")
	}

	switch c.PhonePolicy {
	case PhonePolicyStrict, PhonePolicyLenient:
	default:
		return fmt.Errorf("unsupported PHONE_POLICY: %s", c.PhonePolicy)
	}

	if c.MinNameLength < 0 || c.MinMessageLength < 0 {
		return errors.New("MIN_NAME_LENGTH and MIN_MESSAGE_LENGTH must not be negative")
	}

	if c.SheetsAppendTimeout <= 0 {
		return errors.New("SHEETS_APPEND_TIMEOUT must be positive")
	}

	switch c.CaptchaProvider {
	case "none":
	case "aliyun":
		if c.CaptchaSceneID == "" {
			return errors.New("CAPTCHA_SCENE_ID is required when CAPTCHA_PROVIDER=aliyun")
		}
		if c.CaptchaTimeout <= 0 {
			return errors.New("CAPTCHA_TIMEOUT must be positive")
		}
	default:
		return fmt.Errorf("unsupported CAPTCHA_PROVIDER: %s", c.CaptchaProvider)
	}

	if c.RateLimitEnabled() && (c.RateLimitMax <= 0 || c.RateLimitWindow <= 0) {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}

	if c.OTelEnabled {
		if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
			return errors.New("OTEL_SAMPLE_RATIO must be between 0 and 1")
		}
		if c.OTelMetricInterval <= 0 {
			return errors.New("OTEL_METRIC_EXPORT_INTERVAL must be positive")
		}
	}

	if c.NodeID < 0 || c.NodeID > 1023 {
		return errors.New("NODE_ID must be between 0 and 1023")
	}

	if len(c.AllowedOrigins) == 0 {
		log.Printf("WARN: ALLOWED_ORIGINS is empty, only requests without Origin will be served")
	}

	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) RateLimitEnabled() bool {
	return c.RedisAddr != ""
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
