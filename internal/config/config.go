// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Payment     PaymentConfig
	Email       EmailConfig
	Store       StoreConfig
	Reward      RewardConfig
	Frontend    FrontendConfig
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

// PaymentConfig covers both payment paths: the hosted-redirect gateway
// (merchant credentials and the URLs the client is bounced through) and
// Stripe for direct card payments.
type PaymentConfig struct {
	GatewayURL        string
	MerchantID        string
	MerchantKey       string
	Passphrase        string
	ReturnURL         string
	CancelURL         string
	NotifyURL         string
	StripeSecretKey   string
	StripePublishable string
}

func (c PaymentConfig) Sandbox() bool {
	return strings.Contains(c.GatewayURL, "sandbox")
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// StoreConfig holds the merchant-level pricing knobs that apply to every
// checkout rather than to a single product.
type StoreConfig struct {
	Name              string
	Address           string
	Country           string
	CurrencySymbol    string
	DeliveryFee       float64
	VATPercentage     float64
	BrandPrice        float64 // per-unit price of a standalone brand-logo print line
	CustomPrice       float64 // per-unit price of a standalone custom-design line
	LowStockThreshold int
	MinBulkQuantity   int
}

type RewardConfig struct {
	CashbackPercent    float64
	CouponValue        float64
	CouponValidityDays int
	MinRedeemPoints    int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "ghanadude"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "af-south-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "ghanadude-media"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Payment: PaymentConfig{
			GatewayURL:        getEnv("PAYFAST_URL", "https://sandbox.payfast.co.za/eng/process"),
			MerchantID:        getEnv("PAYFAST_MERCHANT_ID", ""),
			MerchantKey:       getEnv("PAYFAST_MERCHANT_KEY", ""),
			Passphrase:        getEnv("PAYFAST_PASSPHRASE", ""),
			ReturnURL:         getEnv("PAYFAST_RETURN_URL", ""),
			CancelURL:         getEnv("PAYFAST_CANCEL_URL", ""),
			NotifyURL:         getEnv("PAYFAST_NOTIFY_URL", ""),
			StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishable: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "no-reply@ghanadude.com"),
			FromName:     getEnv("FROM_NAME", "GhanaDude"),
		},
		Store: StoreConfig{
			Name:              getEnv("STORE_NAME", "GhanaDude"),
			Address:           getEnv("STORE_ADDRESS", "205 Victoria Rd, Woodstock, Cape Town, 7925"),
			Country:           getEnv("STORE_COUNTRY", "South Africa"),
			CurrencySymbol:    getEnv("STORE_CURRENCY", "R"),
			DeliveryFee:       getEnvAsFloat("STORE_DELIVERY_FEE", 100),
			VATPercentage:     getEnvAsFloat("STORE_VAT_PERCENTAGE", 15),
			BrandPrice:        getEnvAsFloat("STORE_BRAND_PRICE", 50),
			CustomPrice:       getEnvAsFloat("STORE_CUSTOM_PRICE", 80),
			LowStockThreshold: getEnvAsInt("STORE_LOW_STOCK_THRESHOLD", 10),
			MinBulkQuantity:   getEnvAsInt("STORE_MIN_BULK_QUANTITY", 10),
		},
		Reward: RewardConfig{
			CashbackPercent:    getEnvAsFloat("REWARD_CASHBACK_PERCENT", 1.0),
			CouponValue:        getEnvAsFloat("REWARD_COUPON_VALUE", 50),
			CouponValidityDays: getEnvAsInt("REWARD_COUPON_VALIDITY_DAYS", 30),
			MinRedeemPoints:    getEnvAsInt("REWARD_MIN_REDEEM_POINTS", 5),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Environment == "production" && (c.Payment.MerchantID == "" || c.Payment.MerchantKey == "") {
		return fmt.Errorf("payment gateway merchant credentials are required in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
