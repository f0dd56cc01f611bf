package config

import (
	"fmt"
	"os"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret  string        // JWT署名シークレット
	AccessTTL  time.Duration // access tokenの有効期限
	RefreshTTL time.Duration // refresh tokenの有効期限

	FacebookAppID     string // Facebook App ID（fbLogin用）
	FacebookAppSecret string // Facebook App Secret

	GoEnv        string // dev/prod
	ClientOrigin string // フロントURL（CORS・確認メールのリンクで使う）
	CookieSecure bool   // refresh cookieのSecure属性
}

// Loadは環境変数から設定を組み立てる
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		AccessTTL:  10 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,

		FacebookAppID:     os.Getenv("FACEBOOK_APP_ID"),
		FacebookAppSecret: os.Getenv("FACEBOOK_APP_SECRET"),

		GoEnv:        getenv("GO_ENV", "dev"),
		ClientOrigin: getenv("CLIENT_ORIGIN", "http://localhost:3000"),
		CookieSecure: envBool("COOKIE_SECURE", true),
	}

	// 署名キーなしでは起動させない（リクエスト毎に失敗させても回復しないため）
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("ACCESS_TOKEN_TTL must be duration: %w", err)
		}
		cfg.AccessTTL = d
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("REFRESH_TOKEN_TTL must be duration: %w", err)
		}
		cfg.RefreshTTL = d
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

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}
