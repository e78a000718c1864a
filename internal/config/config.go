package config

import (
	"os"
	"strconv"
)

// Config holds process-level settings read from the environment. Every
// external backend is optional; an empty value selects the local fallback.
type Config struct {
	DatabaseURL       string
	RedisURL          string
	RedisPrefix       string
	S3Endpoint        string
	S3AccessKey       string
	S3SecretKey       string
	S3UseSSL          bool
	ScreenshotsBucket string
	ScreenshotsDir    string
	StatusAddr        string
	ChromePath        string
	Headless          bool
}

func getBool(key, def string) bool {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() Config {
	return Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisPrefix:       getString("REDIS_PREFIX", "uxaudit:"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKey:       os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:       os.Getenv("S3_SECRET_KEY"),
		S3UseSSL:          getBool("S3_USE_SSL", "false"),
		ScreenshotsBucket: os.Getenv("SCREENSHOTS_BUCKET"),
		ScreenshotsDir:    getString("SCREENSHOTS_DIR", "public"),
		StatusAddr:        os.Getenv("STATUS_ADDR"),
		ChromePath:        os.Getenv("CHROME_PATH"),
		Headless:          getBool("HEADLESS", "true"),
	}
}

// UseBucket reports whether screenshots go to an S3-compatible bucket.
func (c Config) UseBucket() bool {
	return c.S3Endpoint != "" && c.ScreenshotsBucket != ""
}
