package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env           string
	AppSecret     string
	DatabaseURL   string
	DataDir       string // 文件回退模式的数据目录
	AdminPassword string
	JWTExpiry     time.Duration
	Port          string
	CorsOrigin    string
	SiteName      string
	SiteUrl       string
	MaxGuesses    int
	MinClueCount  int // 电影可排期所需的最少已通过线索数
	UpcomingDays  int
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))
	maxGuesses, _ := strconv.Atoi(getEnv("MAX_GUESSES", "6"))
	minClues, _ := strconv.Atoi(getEnv("MIN_CLUE_COUNT", "6"))
	upcomingDays, _ := strconv.Atoi(getEnv("UPCOMING_DAYS", "5"))

	// DATABASE_URL 未显式配置时按分项环境变量拼 Postgres 连接串
	// 也可以直接给 sqlite 文件路径（sqlite://reelguess.db）或 file: 前缀走 JSON 文件回退
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		dbUser := getEnv("DB_USER", "postgres")
		dbPass := getEnv("DB_PASSWORD", "postgres")
		dbHost := getEnv("DB_HOST", "localhost")
		dbPort := getEnv("DB_PORT", "5432")
		dbName := getEnv("DB_NAME", "reelguess")
		dbSSL := getEnv("DB_SSLMODE", "disable")

		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)
	}

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", "your-secret-key-change-in-production"))

	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:           getEnv("APP_ENV", "development"),
		AppSecret:     appSecret,
		DatabaseURL:   dbURL,
		DataDir:       getEnv("DATA_DIR", "./data"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		JWTExpiry:     time.Duration(expiryHours) * time.Hour,
		Port:          getEnv("PORT", "5005"),
		CorsOrigin:    getEnv("CORS_ORIGIN", "*"),
		SiteName:      getEnv("SITE_NAME", "Reelguess"),
		SiteUrl:       getEnv("SITE_URL", "http://localhost:5005"),
		MaxGuesses:    maxGuesses,
		MinClueCount:  minClues,
		UpcomingDays:  upcomingDays,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
