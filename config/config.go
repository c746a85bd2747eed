package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Discount DiscountConfig
	KeyHub   KeyHubConfig
	Telegram TelegramConfig
	API      APIConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name        string
	Environment string
	Port        string
	Debug       bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxIdle  int
	MaxOpen  int
	MaxLife  time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

// AuthConfig holds access-token configuration
type AuthConfig struct {
	AccessSecret   string
	Issuer         string
	Audience       string
	AccessTokenTTL time.Duration
}

// DiscountConfig holds fallback defaults for the referral tunables,
// used when the persisted settings row cannot be loaded.
type DiscountConfig struct {
	ReferralBuyerDiscount int
	ReferralMaxDiscount   int
}

// KeyHubConfig holds the remote purchase transaction service configuration
type KeyHubConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// TelegramConfig holds the outbound notification channel configuration
type TelegramConfig struct {
	BotToken       string
	ChatID         string
	SupportChatID  string
	TimeoutSeconds int
}

// APIConfig holds API configuration
type APIConfig struct {
	TimeoutSeconds int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// .env file not found, continue with environment variables
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Keyshop"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Debug:       getEnvBool("APP_DEBUG", true),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "keyshop_db"),
			User:     getEnv("DB_USER", "keyshop_user"),
			Password: getEnv("DB_PASSWORD", "keyshop_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxIdle:  getEnvInt("DB_MAX_IDLE", 10),
			MaxOpen:  getEnvInt("DB_MAX_OPEN", 100),
			MaxLife:  getEnvDuration("DB_MAX_LIFE", time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		Auth: AuthConfig{
			AccessSecret:   getEnv("AUTH_ACCESS_SECRET", "your-secret-key"),
			Issuer:         getEnv("AUTH_ISSUER", "keyshop"),
			Audience:       getEnv("AUTH_AUDIENCE", "keyshop-clients"),
			AccessTokenTTL: getEnvDuration("AUTH_ACCESS_TTL", 24*time.Hour),
		},
		Discount: DiscountConfig{
			ReferralBuyerDiscount: getEnvInt("DISCOUNT_REFERRAL_BUYER", 1),
			ReferralMaxDiscount:   getEnvInt("DISCOUNT_REFERRAL_MAX", 10),
		},
		KeyHub: KeyHubConfig{
			BaseURL:        getEnv("KEYHUB_BASE_URL", "http://localhost:9090"),
			APIKey:         getEnv("KEYHUB_API_KEY", ""),
			TimeoutSeconds: getEnvInt("KEYHUB_TIMEOUT", 30),
		},
		Telegram: TelegramConfig{
			BotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:         getEnv("TELEGRAM_CHAT_ID", ""),
			SupportChatID:  getEnv("TELEGRAM_SUPPORT_CHAT_ID", ""),
			TimeoutSeconds: getEnvInt("TELEGRAM_TIMEOUT", 10),
		},
		API: APIConfig{
			TimeoutSeconds: getEnvInt("API_TIMEOUT", 30),
		},
	}

	return config, nil
}

// GetDSN returns database connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// GetRedisAddr returns Redis connection address
func (r *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// IsDevelopment returns true if environment is development
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if environment is production
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates configuration
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Auth.AccessSecret == "" || c.Auth.AccessSecret == "your-secret-key" {
		return fmt.Errorf("auth access secret must be set and not use default value")
	}
	if c.Discount.ReferralBuyerDiscount < 0 || c.Discount.ReferralBuyerDiscount > 100 {
		return fmt.Errorf("referral buyer discount must be within [0,100]")
	}
	if c.Discount.ReferralMaxDiscount < 0 || c.Discount.ReferralMaxDiscount > 100 {
		return fmt.Errorf("referral max discount must be within [0,100]")
	}
	if c.KeyHub.BaseURL == "" {
		return fmt.Errorf("keyhub base URL is required")
	}
	return nil
}

// Print prints configuration (excluding sensitive data)
func (c *Config) Print() {
	fmt.Printf("=== Configuration ===\n")
	fmt.Printf("App Name: %s\n", c.App.Name)
	fmt.Printf("Environment: %s\n", c.App.Environment)
	fmt.Printf("Port: %s\n", c.App.Port)
	fmt.Printf("Debug: %v\n", c.App.Debug)
	fmt.Printf("Database: %s:%s/%s\n", c.Database.Host, c.Database.Port, c.Database.Name)
	fmt.Printf("Redis: %s:%s/%d\n", c.Redis.Host, c.Redis.Port, c.Redis.DB)
	fmt.Printf("KeyHub: %s\n", c.KeyHub.BaseURL)
	fmt.Printf("Referral defaults: buyer=%d%% cap=%d%%\n",
		c.Discount.ReferralBuyerDiscount, c.Discount.ReferralMaxDiscount)
	fmt.Printf("====================\n")
}
