package app

import (
	"reflect"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.HTTPAddr != ":3000" {
		t.Errorf("HTTPAddr = %q, want :3000", cfg.HTTPAddr)
	}
	if cfg.HistoryLimit != 200 {
		t.Errorf("HistoryLimit = %d, want 200", cfg.HistoryLimit)
	}
	if cfg.PGMaxConn != 10 {
		t.Errorf("PGMaxConn = %d, want 10", cfg.PGMaxConn)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("HISTORY_LIMIT", "50")
	t.Setenv("CORS_ALLOW", "http://a.example, http://b.example")

	cfg := LoadConfig()

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	want := []string{"http://a.example", "http://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllow, want) {
		t.Errorf("CORSAllow = %v, want %v", cfg.CORSAllow, want)
	}
}

func TestLoadConfig_BadIntFallsBack(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "not-a-number")

	cfg := LoadConfig()
	if cfg.HistoryLimit != 200 {
		t.Errorf("HistoryLimit = %d, want default 200", cfg.HistoryLimit)
	}
}
