package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはクライアント全体の設定
type Config struct {
	APIBaseURL string // 例: http://localhost:5000/api

	StatePath string // ローカルキャッシュ（sqlite）のパス

	HeaderLimit int // 直列化ヘッダ＋Cookieの上限byte（既定2500）
	CookieLimit int // 接頭辞退避後のCookie上限byte（既定1500）
	MaxRetries  int // 431リトライ上限（既定2）

	KeyringService string // OSキーリングのサービス名（空ならキーリング不使用）

	GoEnv string // dev/prod
}

// Loadは環境変数から設定を組み立てる
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL:     os.Getenv("API_BASE_URL"),
		StatePath:      os.Getenv("STATE_PATH"),
		HeaderLimit:    2500,
		CookieLimit:    1500,
		MaxRetries:     2,
		KeyringService: os.Getenv("KEYRING_SERVICE"),
		GoEnv:          getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("API_BASE_URL is required")
	}
	if cfg.StatePath == "" {
		return Config{}, fmt.Errorf("STATE_PATH is required")
	}

	var err error
	if cfg.HeaderLimit, err = getenvInt("HEADER_LIMIT", cfg.HeaderLimit); err != nil {
		return Config{}, err
	}
	if cfg.CookieLimit, err = getenvInt("COOKIE_LIMIT", cfg.CookieLimit); err != nil {
		return Config{}, err
	}
	if cfg.MaxRetries, err = getenvInt("MAX_RETRIES", cfg.MaxRetries); err != nil {
		return Config{}, err
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

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
