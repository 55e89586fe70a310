package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application-level configuration
type Config struct {
	// Target
	EventURL          string `json:"eventUrl"`
	AvailabilityMatch string `json:"availabilityMatch"` // URL substring of availability responses
	SeatmapMatch      string `json:"seatmapMatch"`      // URL substring of seatmap responses

	// Browser
	Headless         bool          `json:"headless"`
	UserAgent        string        `json:"userAgent"`
	WindowWidth      int           `json:"windowWidth"`
	WindowHeight     int           `json:"windowHeight"`
	PageTimeout      time.Duration `json:"pageTimeout"`
	CaptureWindow    time.Duration `json:"captureWindow"` // how long to keep listening after load
	InteractionDelay time.Duration `json:"interactionDelay"`
	MaxInteractions  int           `json:"maxInteractions"`
	MaxRetries       int           `json:"maxRetries"`

	// Output
	OutputDir     string `json:"outputDir"`
	ScreenshotDir string `json:"screenshotDir"`

	// Optional sinks, disabled when empty
	DatabaseURL string        `json:"databaseUrl"`
	RedisAddr   string        `json:"redisAddr"`
	RedisTTL    time.Duration `json:"redisTtl"`
	AMQPURL     string        `json:"amqpUrl"`

	LogLevel string `json:"logLevel"`
}

// PipelineConfig is the explicit configuration handed to the capture pipeline
type PipelineConfig struct {
	EventURL          string
	AvailabilityMatch string
	SeatmapMatch      string
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		EventURL:          "https://mlb.tickets.com/?agency=MILB_MPV&orgid=56877&pid=9573829#/event/9573829/seatmap/?minPrice=63.54&maxPrice=63.54&quantity=2&sort=price_desc&ada=false&seatSelection=true&onlyCoupon=true&onlyVoucher=false",
		AvailabilityMatch: "/availability",
		SeatmapMatch:      "/seatmap",
		Headless:          true,
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		WindowWidth:       1920,
		WindowHeight:      1080,
		PageTimeout:       60 * time.Second,
		CaptureWindow:     5 * time.Second,
		InteractionDelay:  time.Second,
		MaxInteractions:   3,
		MaxRetries:        3,
		OutputDir:         "output",
		ScreenshotDir:     "output/screenshots",
		RedisTTL:          24 * time.Hour,
		LogLevel:          "info",
	}
}

// Load reads configuration from a .env file and environment variables, falling back to defaults
func Load() *Config {
	_ = godotenv.Load() // .env is optional
	return applyEnv(Defaults())
}

// Pipeline extracts the pipeline configuration
func (c *Config) Pipeline() PipelineConfig {
	return PipelineConfig{
		EventURL:          c.EventURL,
		AvailabilityMatch: c.AvailabilityMatch,
		SeatmapMatch:      c.SeatmapMatch,
	}
}

func applyEnv(c *Config) *Config {
	c.EventURL = getEnv("EVENT_URL", c.EventURL)
	c.AvailabilityMatch = getEnv("AVAILABILITY_MATCH", c.AvailabilityMatch)
	c.SeatmapMatch = getEnv("SEATMAP_MATCH", c.SeatmapMatch)
	c.Headless = getEnvBool("HEADLESS", c.Headless)
	c.UserAgent = getEnv("USER_AGENT", c.UserAgent)
	c.WindowWidth = getEnvInt("WINDOW_WIDTH", c.WindowWidth)
	c.WindowHeight = getEnvInt("WINDOW_HEIGHT", c.WindowHeight)
	c.PageTimeout = getEnvDuration("PAGE_TIMEOUT", c.PageTimeout)
	c.CaptureWindow = getEnvDuration("CAPTURE_WINDOW", c.CaptureWindow)
	c.InteractionDelay = getEnvDuration("INTERACTION_DELAY", c.InteractionDelay)
	c.MaxInteractions = getEnvInt("MAX_INTERACTIONS", c.MaxInteractions)
	c.MaxRetries = getEnvInt("MAX_RETRIES", c.MaxRetries)
	c.OutputDir = getEnv("OUTPUT_DIR", c.OutputDir)
	c.ScreenshotDir = getEnv("SCREENSHOT_DIR", c.ScreenshotDir)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisTTL = getEnvDuration("REDIS_TTL", c.RedisTTL)
	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	return c
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvDuration accepts Go durations ("90s") or plain milliseconds ("1500")
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}
