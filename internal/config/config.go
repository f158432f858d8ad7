package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Rate Limit
	RateLimitGeneral int
	RateLimitSignup  int

	// Seed
	ActivitiesFile string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envファイルがあれば先に読み込む。
// 既に設定済みの環境変数は.envでは上書きされない。
func Load() (*Config, error) {
	// .envは開発時の利便用。未配置なら環境変数のみを使用する
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSignup = getEnvInt("RATE_LIMIT_SIGNUP", 20)
	cfg.ActivitiesFile = getEnvString("ACTIVITIES_FILE", "")

	// レート制限0はAPIを無応答にするため起動時に弾く
	if cfg.RateLimitGeneral <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_GENERAL must be a positive integer, got %d", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitSignup <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_SIGNUP must be a positive integer, got %d", cfg.RateLimitSignup)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
