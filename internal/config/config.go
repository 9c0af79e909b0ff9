package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                  string        `mapstructure:"PORT"`
	DatabaseDriver        string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseDSN           string        `mapstructure:"DATABASE_DSN"`
	JWTSecret             string        `mapstructure:"JWT_SECRET"`
	GoogleClientID        string        `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret    string        `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL     string        `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendURL           string        `mapstructure:"FRONTEND_URL"`
	AdminEmails           []string      `mapstructure:"ADMIN_EMAILS"`
	AutoApprove           bool          `mapstructure:"AUTO_APPROVE"`
	RedisURL              string        `mapstructure:"REDIS_URL"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
	DiscordBotToken       string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordChannelID      string        `mapstructure:"DISCORD_CHANNEL_ID"`
	SMTPHost              string        `mapstructure:"SMTP_HOST"`
	SMTPPort              int           `mapstructure:"SMTP_PORT"`
	SMTPUser              string        `mapstructure:"SMTP_USER"`
	SMTPPass              string        `mapstructure:"SMTP_PASS"`
	SMTPFrom              string        `mapstructure:"SMTP_FROM"`
	StorageProvider       string        `mapstructure:"STORAGE_PROVIDER"`
	StorageLocalDir       string        `mapstructure:"STORAGE_LOCAL_DIR"`
	GCSBucket             string        `mapstructure:"GCS_BUCKET"`
	GCSCredentialsJSON    string        `mapstructure:"GCS_CREDENTIALS_JSON"`
	OCREndpoint           string        `mapstructure:"OCR_ENDPOINT"`
	OCRAPIKey             string        `mapstructure:"OCR_API_KEY"`
	OCRTimeout            time.Duration `mapstructure:"OCR_TIMEOUT"`
	OCRRetryCount         int           `mapstructure:"OCR_RETRY_COUNT"`
	LeaderboardLimit      int           `mapstructure:"LEADERBOARD_LIMIT"`
	LeaderboardCacheTTL   time.Duration `mapstructure:"LEADERBOARD_CACHE_TTL"`
	ReceiptScansPerMinute int           `mapstructure:"RECEIPT_SCANS_PER_MINUTE"`
	MaxReceiptBytes       int64         `mapstructure:"MAX_RECEIPT_BYTES"`
}

const (
	StorageProviderLocal = "local"
	StorageProviderGCS   = "gcs"
)

func LoadConfig() *Config {
	// .env is optional; real deployments set the environment directly.
	//nolint:errcheck
	godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "coney.db")
	v.SetDefault("GOOGLE_REDIRECT_URL", "http://127.0.0.1:8080/auth/google/callback")
	v.SetDefault("FRONTEND_URL", "http://127.0.0.1:3000/")
	v.SetDefault("ADMIN_EMAILS", []string{})
	v.SetDefault("AUTO_APPROVE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("STORAGE_PROVIDER", StorageProviderLocal)
	v.SetDefault("STORAGE_LOCAL_DIR", "uploads")
	v.SetDefault("OCR_ENDPOINT", "https://api.ocr.space/parse/image")
	v.SetDefault("OCR_TIMEOUT", 15*time.Second)
	v.SetDefault("OCR_RETRY_COUNT", 0)
	v.SetDefault("LEADERBOARD_LIMIT", 25)
	v.SetDefault("LEADERBOARD_CACHE_TTL", time.Minute)
	v.SetDefault("RECEIPT_SCANS_PER_MINUTE", 6)
	v.SetDefault("MAX_RECEIPT_BYTES", 8<<20)

	v.BindEnv("JWT_SECRET")
	v.BindEnv("GOOGLE_CLIENT_ID")
	v.BindEnv("GOOGLE_CLIENT_SECRET")
	v.BindEnv("REDIS_URL")
	v.BindEnv("DISCORD_BOT_TOKEN")
	v.BindEnv("DISCORD_CHANNEL_ID")
	v.BindEnv("SMTP_HOST")
	v.BindEnv("SMTP_USER")
	v.BindEnv("SMTP_PASS")
	v.BindEnv("SMTP_FROM")
	v.BindEnv("GCS_BUCKET")
	v.BindEnv("GCS_CREDENTIALS_JSON")
	v.BindEnv("OCR_API_KEY")

	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if e != "" && strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
