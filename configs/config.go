package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port    string `mapstructure:"PORT"`
	AppEnv  string `mapstructure:"APP_ENV"`
	LogFile string `mapstructure:"LOG_FILE"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	PlatformFeeRate         float64 `mapstructure:"PLATFORM_FEE_RATE"`
	DefaultScheduleMonths   int     `mapstructure:"DEFAULT_SCHEDULE_MONTHS"`
	SessionWriteConcurrency int     `mapstructure:"SESSION_WRITE_CONCURRENCY"`
	CheckoutRatePerMinute   int     `mapstructure:"CHECKOUT_RATE_PER_MINUTE"`

	PaymentAPIBaseURL  string `mapstructure:"PAYMENT_API_BASE_URL"`
	PaymentSecretKey   string `mapstructure:"PAYMENT_SECRET_KEY"`
	CardFingerprintKey string `mapstructure:"CARD_FINGERPRINT_KEY"`
	Currency           string `mapstructure:"CURRENCY"`

	EmailProvider   string `mapstructure:"EMAIL_PROVIDER"`
	BrevoAPIKey     string `mapstructure:"BREVO_API_KEY"`
	SendGridAPIKey  string `mapstructure:"SENDGRID_API_KEY"`
	EmailSender     string `mapstructure:"EMAIL_SENDER"`
	EmailSenderName string `mapstructure:"EMAIL_SENDER_NAME"`

	StorageType    string `mapstructure:"STORAGE_TYPE"`
	CloudinaryURL  string `mapstructure:"CLOUDINARY_URL"`
	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	AIBaseURL string `mapstructure:"AI_BASE_URL"`
	AIAPIKey  string `mapstructure:"AI_API_KEY"`
	AIModel   string `mapstructure:"AI_MODEL"`
}

var defaults = map[string]any{
	"PORT":                      "8080",
	"APP_ENV":                   "production",
	"LOG_FILE":                  "logs/educonnect.log",
	"PLATFORM_FEE_RATE":         0.025,
	"DEFAULT_SCHEDULE_MONTHS":   3,
	"SESSION_WRITE_CONCURRENCY": 8,
	"CHECKOUT_RATE_PER_MINUTE":  5,
	"PAYMENT_API_BASE_URL":      "https://api.stripe.com",
	"CURRENCY":                  "eur",
	"EMAIL_PROVIDER":            "none",
	"STORAGE_TYPE":              "cloudinary",
	"AI_BASE_URL":               "https://api.openai.com/v1",
	"AI_MODEL":                  "gpt-4o-mini",
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"DATABASE_URL", "JWT_SECRET", "PAYMENT_SECRET_KEY", "CARD_FINGERPRINT_KEY",
		"BREVO_API_KEY", "SENDGRID_API_KEY", "EMAIL_SENDER", "EMAIL_SENDER_NAME",
		"CLOUDINARY_URL", "MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY",
		"MINIO_BUCKET", "MINIO_USE_SSL", "AI_API_KEY",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
