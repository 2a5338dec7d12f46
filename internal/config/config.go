package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Config struct {
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration

	HTTPAddr     string
	CORSOrigins  []string
	WorkerCount  int
	WorkerQueue  int
	ShopCacheTTL time.Duration
	LogLevel     string
}

// Load 讀取環境變數；getenv 通常為 os.Getenv
func Load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		JWTAlgorithm: "HS256",
		TokenTTL:     15 * time.Minute,
		HTTPAddr:     ":8080",
		WorkerCount:  1,
		WorkerQueue:  64,
		ShopCacheTTL: 30 * time.Second,
		LogLevel:     "info",
	}

	if cfg.DatabaseURL = getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("環境變數 DATABASE_URL 未設定")
	}
	if cfg.RedisAddr = getenv("REDIS_ADDR"); cfg.RedisAddr == "" {
		return nil, fmt.Errorf("環境變數 REDIS_ADDR 未設定")
	}
	redisDBStr := getenv("REDIS_DB")
	if redisDBStr == "" {
		return nil, fmt.Errorf("環境變數 REDIS_DB 未設定")
	}
	idx, err := strconv.Atoi(redisDBStr)
	if err != nil {
		return nil, fmt.Errorf("無效的 REDIS_DB: %v", err)
	}
	cfg.RedisDB = idx
	cfg.RedisPassword = getenv("REDIS_PASSWORD")

	if cfg.JWTSecret = getenv("JWT_SECRET"); cfg.JWTSecret == "" {
		return nil, fmt.Errorf("環境變數 JWT_SECRET 未設定")
	}
	if v := getenv("JWT_ALGORITHM"); v != "" {
		switch v {
		case jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg():
			cfg.JWTAlgorithm = v
		default:
			return nil, fmt.Errorf("不支援的 JWT_ALGORITHM: %s", v)
		}
	}
	if v := getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m <= 0 {
			return nil, fmt.Errorf("無效的 ACCESS_TOKEN_EXPIRE_MINUTES: %q", v)
		}
		cfg.TokenTTL = time.Duration(m) * time.Minute
	}

	if v := getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	if v := getenv("WORKER_COUNT"); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil || c <= 0 {
			return nil, fmt.Errorf("無效的 WORKER_COUNT: %q", v)
		}
		cfg.WorkerCount = c
	}
	if v := getenv("WORKER_QUEUE"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil || q < 0 {
			return nil, fmt.Errorf("無效的 WORKER_QUEUE: %q", v)
		}
		cfg.WorkerQueue = q
	}
	if v := getenv("SHOP_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("無效的 SHOP_CACHE_TTL: %q", v)
		}
		cfg.ShopCacheTTL = d
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

// LoadAdmin 供 admin CLI 使用：只需要 DATABASE_URL，REDIS_ADDR 未設定時不清除快取
func LoadAdmin(getenv func(string) string) (*Config, error) {
	cfg := &Config{LogLevel: "warn"}
	if cfg.DatabaseURL = getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("環境變數 DATABASE_URL 未設定")
	}
	cfg.RedisAddr = getenv("REDIS_ADDR")
	cfg.RedisPassword = getenv("REDIS_PASSWORD")
	if v := getenv("REDIS_DB"); v != "" {
		idx, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("無效的 REDIS_DB: %v", err)
		}
		cfg.RedisDB = idx
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}
