package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば POSTGRES_* より優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret  string // 認証プロバイダが発行する管理者トークンの検証用
	CronSecret string // /api/orders/poll の Bearer（空なら無認証）

	GoEnv   string // dev/prod
	SiteURL string // checkout の success/cancel URL の基点

	StripeSecretKey     string
	StripeWebhookSecret string

	PrintfulAPIKey        string
	PrintfulStoreID       string
	PrintfulBaseURL       string
	PrintfulWebhookSecret string  // 空なら署名チェックをスキップ
	PrintfulRPS           float64 // Printful APIへの秒間リクエスト上限

	SendGridAPIKey string
	MailFrom       string
	MailFromName   string

	ShippingAllowedCountries []string
}

// Loadは環境変数から設定を読む。.envがあれば先に読み込む。
func Load() (Config, error) {
	// .envは任意
	_ = godotenv.Load()

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		CronSecret: os.Getenv("CRON_SECRET"),

		GoEnv:   getenv("GO_ENV", "dev"),
		SiteURL: strings.TrimRight(getenv("SITE_URL", "http://localhost:3000"), "/"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		PrintfulAPIKey:        os.Getenv("PRINTFUL_API_KEY"),
		PrintfulStoreID:       os.Getenv("PRINTFUL_STORE_ID"),
		PrintfulBaseURL:       strings.TrimRight(getenv("PRINTFUL_BASE_URL", "https://api.printful.com"), "/"),
		PrintfulWebhookSecret: os.Getenv("PRINTFUL_WEBHOOK_SECRET"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getenv("MAIL_FROM", "orders@example.com"),
		MailFromName:   getenv("MAIL_FROM_NAME", "Shop"),

		ShippingAllowedCountries: splitList(getenv("SHIPPING_ALLOWED_COUNTRIES", "US,CA")),
	}

	rps, err := atofDefault("PRINTFUL_RPS", 2)
	if err != nil {
		return Config{}, err
	}
	cfg.PrintfulRPS = rps

	//DBはDATABASE_URLか POSTGRES_* のどちらか
	if cfg.DatabaseURL == "" {
		pgPort, err := mustAtoi("POSTGRES_PORT")
		if err != nil {
			return Config{}, err
		}
		cfg.PostgresPort = pgPort

		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
		if cfg.PostgresHost == "" {
			return Config{}, fmt.Errorf("POSTGRES_HOST is required")
		}
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// DSNはgorm用の接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func atofDefault(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s must be positive number", key)
	}
	return f, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
