package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	Store    StoreConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

// GatewayConfig holds the Zibal merchant credentials and endpoints.
type GatewayConfig struct {
	Merchant    string
	Title       string
	Description string
	RequestURL  string
	VerifyURL   string
	StartPayURL string
	// CallbackURL is the public URL of the /payment/callback route.
	CallbackURL string
}

// StoreConfig points back at the merchant shop pages and controls
// how long an unpaid order may stay pending.
type StoreConfig struct {
	CheckoutURL string
	ReceiptURL  string
	PendingTTL  time.Duration
}

// NotifyConfig configures the optional operator payment report.
type NotifyConfig struct {
	BotToken string
	ChatID   string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("GATEWAY_REQUEST_URL", "https://gateway.zibal.ir/v1/request")
	viper.SetDefault("GATEWAY_VERIFY_URL", "https://gateway.zibal.ir/v1/verify")
	viper.SetDefault("GATEWAY_STARTPAY_URL", "https://gateway.zibal.ir/start/")
	viper.SetDefault("GATEWAY_TITLE", "Zibal")
	viper.SetDefault("STORE_PENDING_TTL", "0")

	pendingTTL, err := time.ParseDuration(viper.GetString("STORE_PENDING_TTL"))
	if err != nil {
		pendingTTL = 0
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Gateway: GatewayConfig{
			Merchant:    viper.GetString("GATEWAY_MERCHANT"),
			Title:       viper.GetString("GATEWAY_TITLE"),
			Description: viper.GetString("GATEWAY_DESCRIPTION"),
			RequestURL:  viper.GetString("GATEWAY_REQUEST_URL"),
			VerifyURL:   viper.GetString("GATEWAY_VERIFY_URL"),
			StartPayURL: viper.GetString("GATEWAY_STARTPAY_URL"),
			CallbackURL: viper.GetString("GATEWAY_CALLBACK_URL"),
		},
		Store: StoreConfig{
			CheckoutURL: viper.GetString("STORE_CHECKOUT_URL"),
			ReceiptURL:  viper.GetString("STORE_RECEIPT_URL"),
			PendingTTL:  pendingTTL,
		},
		Notify: NotifyConfig{
			BotToken: viper.GetString("NOTIFY_BOT_TOKEN"),
			ChatID:   viper.GetString("NOTIFY_CHAT_ID"),
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.Gateway.Merchant == "" {
		log.Println("WARNING: GATEWAY_MERCHANT is not set")
	}
	if cfg.Gateway.CallbackURL == "" {
		log.Println("WARNING: GATEWAY_CALLBACK_URL is not set")
	}

	return cfg, nil
}

// LoadDatabaseOnly reads just the database settings, for the bootstrap command.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")

	return &DatabaseConfig{
		Host:    viper.GetString("DB_HOST"),
		Port:    viper.GetString("DB_PORT"),
		Name:    viper.GetString("DB_NAME"),
		User:    viper.GetString("DB_USER"),
		Pass:    viper.GetString("DB_PASS"),
		Charset: viper.GetString("DB_CHARSET"),
	}, nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
