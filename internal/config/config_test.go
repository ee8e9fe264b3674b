package config

import (
	"testing"
)

func TestLoadServerConfig(t *testing.T) {
	cases := []struct {
		name    string
		port    string
		want    string
		wantErr bool
	}{
		{name: "default", port: "", want: ":8080"},
		{name: "bare port", port: "9000", want: ":9000"},
		{name: "addr with colon", port: ":7000", want: ":7000"},
		{name: "host and port", port: "127.0.0.1:7000", want: "127.0.0.1:7000"},
		{name: "whitespace trimmed", port: "  8081  ", want: ":8081"},
		{name: "invalid", port: "80 80", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("PORT", tc.port)
			cfg, err := loadServerConfig()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for PORT=%q", tc.port)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Addr != tc.want {
				t.Fatalf("expected addr %q, got %q", tc.want, cfg.Addr)
			}
		})
	}
}

func TestLoadCORSConfig(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://staging.example.com ,")
	cfg := loadCORSConfig()
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("expected trimmed origin, got %q", cfg.AllowedOrigins[0])
	}

	t.Setenv("CORS_ORIGINS", "")
	cfg = loadCORSConfig()
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard default, got %v", cfg.AllowedOrigins)
	}
}

func TestAIConfigEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  AIConfig
		want bool
	}{
		{"empty", AIConfig{}, false},
		{"model only", AIConfig{Model: "m"}, false},
		{"api key", AIConfig{Model: "m", APIKey: "k"}, true},
		{"access pair", AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}, true},
		{"access key alone", AIConfig{Model: "m", AccessKey: "a"}, false},
	}
	for _, tc := range cases {
		if got := tc.cfg.Enabled(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestParseOptionalEnvValues(t *testing.T) {
	t.Setenv("ARK_TEMPERATURE", "0.7")
	val, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil || val == nil || *val != 0.7 {
		t.Fatalf("expected 0.7, got %v err=%v", val, err)
	}

	t.Setenv("ARK_TEMPERATURE", "warm")
	if _, err := parseOptionalFloatEnv("ARK_TEMPERATURE"); err == nil {
		t.Fatal("expected error for non-numeric value")
	}

	t.Setenv("ARK_MAX_TOKENS", "2048")
	iv, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil || iv == nil || *iv != 2048 {
		t.Fatalf("expected 2048, got %v err=%v", iv, err)
	}

	t.Setenv("ARK_MAX_TOKENS", "")
	iv, err = parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil || iv != nil {
		t.Fatalf("expected nil for blank value, got %v err=%v", iv, err)
	}
}
