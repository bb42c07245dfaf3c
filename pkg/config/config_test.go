package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.JWTTTL != 168*time.Hour {
		t.Errorf("JWTTTL = %v", cfg.JWTTTL)
	}
	if cfg.FeedInterestWeight != 1e13 {
		t.Errorf("FeedInterestWeight = %d", cfg.FeedInterestWeight)
	}
	if cfg.JWTSecret != developmentJWTSecret {
		t.Errorf("expected development secret, got %q", cfg.JWTSecret)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("FEED_INTEREST_WEIGHT", "200000000000")
	t.Setenv("PUBLIC_BASE_URL", "https://cdn.example.com/")
	t.Setenv("RATE_LIMIT_BURST", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.JWTSecret != "s3cret" || cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.FeedInterestWeight != 200000000000 {
		t.Errorf("FeedInterestWeight = %d", cfg.FeedInterestWeight)
	}
	if cfg.PublicBaseURL != "https://cdn.example.com" {
		t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
	if cfg.RateLimitBurst != 5 {
		t.Errorf("RateLimitBurst = %d", cfg.RateLimitBurst)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		MongoURI:           "mongodb://localhost:27017",
		PostgresURL:        "postgres://localhost/connectai",
		JWTSecret:          "secret",
		JWTTTL:             time.Hour,
		FeedInterestWeight: MinInterestWeight,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing mongo", func(c *Config) { c.MongoURI = "" }, true},
		{"missing postgres", func(c *Config) { c.PostgresURL = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"weight too small", func(c *Config) { c.FeedInterestWeight = MinInterestWeight - 1 }, true},
		{"largest weight", func(c *Config) { c.FeedInterestWeight = MaxInterestWeight }, false},
		{"weight overflows score", func(c *Config) { c.FeedInterestWeight = MaxInterestWeight + 1 }, true},
		{"weight 4e17", func(c *Config) { c.FeedInterestWeight = 4e17 }, true},
		{"zero ttl", func(c *Config) { c.JWTTTL = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
