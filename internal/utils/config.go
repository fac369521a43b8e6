package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mehmetcc/credential-session-service/internal/security/token"
)

const (
	ServiceName         = "credential-session-service"
	MinimumSecretLength = 32
	defaultDotenvPath   = ".env"
	accessTokenTTLUnit  = time.Minute
	refreshTokenTTLUnit = 24 * time.Hour
)

var (
	ErrSecretTooShort = fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes", MinimumSecretLength)
	ErrInvalidTTL     = errors.New("token expiry settings must be positive")

	ErrInvalidSampleRatio = errors.New("OTEL_SAMPLE_RATIO must be between 0 and 1")
)

type DatabaseConfig struct {
	ConnectionString string `env:"CONNECTION_STRING,required,notEmpty"`
}

type TokenConfig struct {
	SecretKey                string `env:"JWT_SECRET_KEY,required,notEmpty"`
	Issuer                   string `env:"JWT_ISSUER" envDefault:"credential-session-service"`
	Audience                 string `env:"JWT_AUDIENCE" envDefault:"credential-session-service"`
	AccessTokenExpiryMinutes int    `env:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES" envDefault:"15"`
	RefreshTokenExpiryDays   int    `env:"JWT_REFRESH_TOKEN_EXPIRY_DAYS" envDefault:"7"`
}

// Settings freezes the token configuration into the value handed to the
// codec and the session service.
func (c TokenConfig) Settings() token.Settings {
	return token.Settings{
		Secret:     []byte(c.SecretKey),
		Issuer:     c.Issuer,
		Audience:   c.Audience,
		AccessTTL:  time.Duration(c.AccessTokenExpiryMinutes) * accessTokenTTLUnit,
		RefreshTTL: time.Duration(c.RefreshTokenExpiryDays) * refreshTokenTTLUnit,
	}
}

type ServerConfig struct {
	Port string `env:"SERVER_PORT" envDefault:"8080"`
}

type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Enabled reports whether the swagger UI has credentials to sit behind.
func (c AdminConfig) Enabled() bool {
	return c.Username != "" && c.Password != ""
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

type PasswordConfig struct {
	MinLength int `env:"PASSWORD_MIN_LENGTH" envDefault:"6"`
}

type TracingConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	SampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

type Config struct {
	Database DatabaseConfig
	Token    TokenConfig
	Server   ServerConfig
	Admin    AdminConfig
	Log      LogConfig
	Password PasswordConfig
	Tracing  TracingConfig
}

// LoadConfig reads an optional dotenv file into the environment and decodes
// the environment into a Config. Variables already set win over the file.
func LoadConfig(dotenvPath string) (*Config, error) {
	if dotenvPath == "" {
		dotenvPath = defaultDotenvPath
	}
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", dotenvPath, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Token.SecretKey) < MinimumSecretLength {
		return ErrSecretTooShort
	}
	if c.Token.AccessTokenExpiryMinutes <= 0 || c.Token.RefreshTokenExpiryDays <= 0 {
		return ErrInvalidTTL
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}
	return nil
}
