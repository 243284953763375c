package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	OTP      OTPConfig
	Password PasswordConfig
	Storage  StorageConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	BaseURL        string
	CORSOrigin     string
	MigrateOnStart bool
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

// DSN returns DATABASE_URL when set, otherwise a keyword/value string built from the parts.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		c.User, c.Password, c.Name, c.Host, c.Port)
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
	Issuer      string
	TokenPrefix string
}

func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type OTPConfig struct {
	ExpiryMinutes           int
	Length                  int
	ResetTokenExpiryMinutes int
}

func (c OTPConfig) OTPTTL() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

func (c OTPConfig) ResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenExpiryMinutes) * time.Minute
}

type PasswordConfig struct {
	MinLength  int
	BcryptCost int
}

type StorageConfig struct {
	Type          string
	UploadDir     string
	UploadBaseURL string
	MaxUploadMB   int64
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3PublicURL   string
}

func (c StorageConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// LoadConfig reads .env from the working directory when present and overlays the
// process environment on top of it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "marketplace-api")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("MIGRATE_ON_START", true)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("JWT_ISSUER", "marketplace-api")
	v.SetDefault("TOKEN_PREFIX", "GHA")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("OTP_EXPIRY_MINUTES", 10)
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("RESET_TOKEN_EXPIRY_MINUTES", 10)
	v.SetDefault("PASSWORD_MIN_LENGTH", 8)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("STORAGE_TYPE", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_BASE_URL", "http://localhost:8080/uploads")
	v.SetDefault("UPLOAD_MAX_MB", 5)
	v.SetDefault("S3_REGION", "us-east-1")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           v.GetString("APP_NAME"),
			Port:           v.GetString("PORT"),
			Debug:          v.GetBool("DEBUG"),
			LogPath:        v.GetString("LOG_PATH"),
			BaseURL:        v.GetString("APP_BASE_URL"),
			CORSOrigin:     v.GetString("CORS_ORIGIN"),
			MigrateOnStart: v.GetBool("MIGRATE_ON_START"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
			Issuer:      v.GetString("JWT_ISSUER"),
			TokenPrefix: v.GetString("TOKEN_PREFIX"),
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
		},
		OTP: OTPConfig{
			ExpiryMinutes:           v.GetInt("OTP_EXPIRY_MINUTES"),
			Length:                  v.GetInt("OTP_LENGTH"),
			ResetTokenExpiryMinutes: v.GetInt("RESET_TOKEN_EXPIRY_MINUTES"),
		},
		Password: PasswordConfig{
			MinLength:  v.GetInt("PASSWORD_MIN_LENGTH"),
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		Storage: StorageConfig{
			Type:          v.GetString("STORAGE_TYPE"),
			UploadDir:     v.GetString("UPLOAD_DIR"),
			UploadBaseURL: v.GetString("UPLOAD_BASE_URL"),
			MaxUploadMB:   v.GetInt64("UPLOAD_MAX_MB"),
			S3Bucket:      v.GetString("S3_BUCKET"),
			S3Region:      v.GetString("S3_REGION"),
			S3Endpoint:    v.GetString("S3_ENDPOINT"),
			S3AccessKey:   v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:   v.GetString("S3_SECRET_KEY"),
			S3PublicURL:   v.GetString("S3_PUBLIC_BASE_URL"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}
