package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Auth struct {
	Secret   string        // Shared HS256 signing secret
	Issuer   string        // Expected "iss" claim
	Audience string        // Expected "aud" claim
	TokenTTL time.Duration // Lifetime of generated test tokens
}

type Queue struct {
	MaxAttempts     int // Delivery attempts before an item is dropped
	HistoryCapacity int // Bounded outcome history size
}

type Delivery struct {
	TargetURL     string        // Downstream endpoint deliveries are posted to
	SigningSecret string        // HMAC secret for outbound signatures
	Timeout       time.Duration // Per-attempt HTTP timeout
}

type Receiver struct {
	FailFirstN    int           // Number of requests to fail initially
	Secret        string        // Secret for inbound signature verification
	LeewaySeconds int           // Allowed timestamp skew in seconds
	Port          string        // Server listen port
	ReadTimeout   time.Duration // HTTP read timeout
	WriteTimeout  time.Duration // HTTP write timeout
	IdleTimeout   time.Duration // HTTP idle timeout
}

type Config struct {
	AppName  string
	HTTPPort string // :8080
	Auth     Auth
	Queue    Queue
	Delivery Delivery
	Receiver Receiver
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// FromEnv builds the configuration from environment variables, loading a
// local .env file first if one exists.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		AppName:  getenv("APP_NAME", "hookgate"),
		HTTPPort: getenv("HTTP_PORT", ":8080"),
		Auth: Auth{
			Secret:   getenv("AUTH_SECRET", "dev-secret-change-me"),
			Issuer:   getenv("AUTH_ISSUER", "hookgate"),
			Audience: getenv("AUTH_AUDIENCE", "hookgate-webhooks"),
			TokenTTL: getenvDuration("AUTH_TOKEN_TTL", time.Hour),
		},
		Queue: Queue{
			MaxAttempts:     getenvInt("MAX_ATTEMPTS", 3),
			HistoryCapacity: getenvInt("HISTORY_CAPACITY", 20),
		},
		Delivery: Delivery{
			TargetURL:     getenv("DELIVERY_TARGET_URL", "http://localhost:8081/hook"),
			SigningSecret: getenv("DELIVERY_SIGNING_SECRET", ""),
			Timeout:       getenvDuration("DELIVERY_TIMEOUT", 15*time.Second),
		},
		Receiver: Receiver{
			FailFirstN:    getenvInt("FAIL_FIRST_N", 0),
			Secret:        getenv("RECEIVER_SECRET", ""),
			LeewaySeconds: getenvInt("SIGNING_LEEWAY_SECONDS", 300),
			Port:          getenv("RECEIVER_PORT", ":8081"),
			ReadTimeout:   getenvDuration("RECEIVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getenvDuration("RECEIVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:   getenvDuration("RECEIVER_IDLE_TIMEOUT", 60*time.Second),
		},
	}
}
