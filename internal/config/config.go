// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// MongoDB設定
	MongoURI      string // MongoDB接続URI（ユーザー・セッション両コレクションで共用）
	MongoDatabase string // 使用するデータベース名

	// セッション設定
	SessionSecret          string // セッションクッキー署名用の秘密鍵
	SessionLifetimeMinutes int    // セッションの有効期間（分）

	// 静的ファイル設定
	PublicDir string // /public 配下で配信する静的ファイルのディレクトリ
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// MongoDB設定
		MongoURI:      getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "member_gate"),

		// セッション設定（有効期限はデフォルト1時間）
		SessionSecret:          getEnv("SESSION_SECRET", ""),
		SessionLifetimeMinutes: getEnvAsInt("SESSION_LIFETIME_MINUTES", 60),

		// 静的ファイル設定
		PublicDir: getEnv("PUBLIC_DIR", "./public"),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発ではセッション秘密鍵は任意
	// 本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required in release mode")
		}
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
	}

	if c.SessionLifetimeMinutes <= 0 {
		return fmt.Errorf("SESSION_LIFETIME_MINUTES must be positive")
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
