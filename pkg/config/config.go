package config

import (
	"math"
	"strings"
	"time"

	"github.com/connectai/backend/internal/models"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// MinInterestWeight keeps one tag match worth more than any timestamp gap.
const MinInterestWeight int64 = 1e11

// MaxEpochMillis is 9999-12-31T23:59:59.999Z, the latest post timestamp
// a feed score has to hold.
const MaxEpochMillis int64 = 253402300799999

// MaxInterestWeight is the largest weight for which
// MaxPostTags*weight + MaxEpochMillis still fits in an int64.
const MaxInterestWeight = (math.MaxInt64 - MaxEpochMillis) / models.MaxPostTags

const developmentJWTSecret = "supersecretjwtkey"

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"ENV"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	MongoURI                string        `mapstructure:"MONGO_URI"`
	MongoDatabase           string        `mapstructure:"MONGO_DATABASE"`
	PostgresURL             string        `mapstructure:"POSTGRES_URL"`
	RedisAddr               string        `mapstructure:"REDIS_ADDR"`
	RedisPassword           string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                 int           `mapstructure:"REDIS_DB"`
	JWTSecret               string        `mapstructure:"JWT_SECRET"`
	JWTTTL                  time.Duration `mapstructure:"JWT_TTL"`
	FirebaseCredentialsPath string        `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	FirebaseStorageBucket   string        `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	UploadDir               string        `mapstructure:"UPLOAD_DIR"`
	PublicBaseURL           string        `mapstructure:"PUBLIC_BASE_URL"`
	FeedInterestWeight      int64         `mapstructure:"FEED_INTEREST_WEIGHT"`
	RateLimitRPS            float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst          int           `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]interface{}{
	"PORT":                      "8080",
	"ENV":                       "development",
	"LOG_LEVEL":                 "info",
	"MONGO_URI":                 "",
	"MONGO_DATABASE":            "connectai",
	"POSTGRES_URL":              "",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"JWT_SECRET":                "",
	"JWT_TTL":                   "168h",
	"FIREBASE_CREDENTIALS_PATH": "",
	"FIREBASE_STORAGE_BUCKET":   "",
	"UPLOAD_DIR":                "uploads",
	"PUBLIC_BASE_URL":           "http://localhost:8080",
	"FEED_INTEREST_WEIGHT":      int64(1e13),
	"RATE_LIMIT_RPS":            10.0,
	"RATE_LIMIT_BURST":          20,
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = developmentJWTSecret
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate fails on missing required settings.
func (c *Config) Validate() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.PostgresURL == "" {
		missing = append(missing, "POSTGRES_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.FeedInterestWeight < MinInterestWeight || c.FeedInterestWeight > MaxInterestWeight {
		return errors.Errorf("FEED_INTEREST_WEIGHT must be between %d and %d", MinInterestWeight, MaxInterestWeight)
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}
