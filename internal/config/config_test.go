package config

import "testing"

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error parsing defaults: %v", err)
	}
	if cfg.JWTAlgorithm != "HS256" {
		t.Fatalf("expected HS256, got %s", cfg.JWTAlgorithm)
	}
	if cfg.AccessTokenExpireMinutes != 60 {
		t.Fatalf("expected 60 minute ttl, got %d", cfg.AccessTokenExpireMinutes)
	}
	if len(cfg.AllowedOrigins()) != 2 {
		t.Fatalf("expected two default origins, got %v", cfg.AllowedOrigins())
	}
}

func TestParseConfigFromEnv(t *testing.T) {
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DB_TYPE", "postgres")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWTAlgorithm != "HS512" {
		t.Fatalf("expected HS512, got %s", cfg.JWTAlgorithm)
	}
	if cfg.DBType != "postgres" {
		t.Fatalf("expected postgres, got %s", cfg.DBType)
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", origins)
	}
}

func TestValidate(t *testing.T) {
	base := Config{JWTSecret: "s", JWTAlgorithm: "HS256", AccessTokenExpireMinutes: 60}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty secret", mutate: func(c *Config) { c.JWTSecret = "  " }, wantErr: true},
		{name: "rsa algorithm", mutate: func(c *Config) { c.JWTAlgorithm = "RS256" }, wantErr: true},
		{name: "unknown algorithm", mutate: func(c *Config) { c.JWTAlgorithm = "none" }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.AccessTokenExpireMinutes = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
