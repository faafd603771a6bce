package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	SessionSecret string // ゲストセッションJWTの署名シークレット
	Currency      string // 通貨コード（eur）

	IntentURL     string        // payment-intentサービスのURL（空なら自分のmockを使う）
	IntentTimeout time.Duration // intentリクエスト1回あたりのタイムアウト
	IntentRetries int           // intentリクエストの最大試行回数
	ConfirmTimeout time.Duration // 確認呼び出しのハードタイムアウト

	CatalogDriver string // memory/postgres
	IntentDBPath  string // mock intentのboltファイル

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート
}

// Loadは環境変数から読む。デモ用のデフォルトを持つ。
func Load() (Config, error) {
	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		SessionSecret: getenv("SESSION_SECRET", "dev_secret_change_me"),
		Currency:      getenv("CURRENCY", "eur"),

		IntentURL:      os.Getenv("INTENT_URL"),
		IntentTimeout:  getenvDuration("INTENT_TIMEOUT", 3*time.Second),
		IntentRetries:  getenvInt("INTENT_RETRIES", 3),
		ConfirmTimeout: getenvDuration("CONFIRM_TIMEOUT", 10*time.Second),

		CatalogDriver: getenv("CATALOG_DRIVER", "memory"),
		IntentDBPath:  getenv("INTENT_DB_PATH", "intents.db"),
	}

	switch cfg.CatalogDriver {
	case "memory":
	case "postgres":
		//postgresのときだけDB設定を必須にする
		pgPort, err := mustAtoi("POSTGRES_PORT")
		if err != nil {
			return Config{}, err
		}
		cfg.PostgresPort = pgPort
		cfg.PostgresUser = os.Getenv("POSTGRES_USER")
		cfg.PostgresPassword = os.Getenv("POSTGRES_PASSWORD")
		cfg.PostgresDB = os.Getenv("POSTGRES_DB")
		cfg.PostgresHost = os.Getenv("POSTGRES_HOST")

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
	default:
		return Config{}, fmt.Errorf("CATALOG_DRIVER must be memory or postgres")
	}

	if cfg.IntentRetries < 1 {
		return Config{}, fmt.Errorf("INTENT_RETRIES must be >= 1")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
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
