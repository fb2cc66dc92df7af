package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GameConfig holds the round timing defaults
type GameConfig struct {
	// DefaultDuration is the countdown used by a plain start
	DefaultDuration time.Duration `json:"defaultDuration"`

	// TimerDuration is used by start-with-timer and timer reset when no duration is given
	TimerDuration time.Duration `json:"timerDuration"`
}

// AuthConfig holds admin credentials and the token secret
type AuthConfig struct {
	AdminUsername     string `json:"adminUsername"`
	AdminPassword     string `json:"-"`
	AdminPasswordHash string `json:"-"` // bcrypt, takes precedence over AdminPassword
	JWTSecret         string `json:"-"`

	// AdminTeams are enrolled with isAdmin set and cannot be blocked
	AdminTeams []string `json:"adminTeams"`
}

// Config is the full server configuration
type Config struct {
	Port      string `json:"port"`
	MongoURI  string `json:"-"`
	MongoDB   string `json:"mongoDb"`
	RedisAddr string `json:"redisAddr"`
	PublicURL string `json:"publicUrl"`

	// SubmitRatePerMinute caps guesses per team
	SubmitRatePerMinute int `json:"submitRatePerMinute"`
	EnrollRatePerMinute int `json:"enrollRatePerMinute"` // per client IP

	Game GameConfig `json:"game"`
	Auth AuthConfig `json:"auth"`
}

// Load reads the configuration from the environment
func Load() *Config {
	return &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		MongoURI:            getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnvOrDefault("MONGO_DB", "decryptrace"),
		RedisAddr:           redisAddr(getEnvOrDefault("REDIS_URI", "localhost:6379")),
		PublicURL:           getEnvOrDefault("PUBLIC_URL", "http://localhost:3000"),
		SubmitRatePerMinute: getIntOrDefault("SUBMIT_RATE_PER_MINUTE", 20),
		EnrollRatePerMinute: getIntOrDefault("ENROLL_RATE_PER_MINUTE", 10),
		Game: GameConfig{
			DefaultDuration: getDurationOrDefault("GAME_DURATION", 10*time.Minute),
			TimerDuration:   getDurationOrDefault("TIMER_DURATION", 20*time.Minute),
		},
		Auth: AuthConfig{
			AdminUsername:     getEnvOrDefault("ADMIN_USERNAME", "admin"),
			AdminPassword:     getEnvOrDefault("ADMIN_PASSWORD", "admin123"),
			AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			JWTSecret:         getEnvOrDefault("JWT_SECRET", "super-secret-key-change-in-production"),
			AdminTeams:        getList("ADMIN_TEAMS"),
		},
	}
}

// redisAddr strips a redis:// scheme, go-redis Options.Addr wants host:port
func redisAddr(uri string) string {
	return strings.TrimPrefix(uri, "redis://")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getList splits a comma-separated value, dropping blanks
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getIntOrDefault(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
