package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.HTTP.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.HTTP.Port)
	}
	if cfg.Database.Path != "data/jam-board.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.HTTP.RequestLimit != 50 {
		t.Errorf("RequestLimit = %d, want 50", cfg.HTTP.RequestLimit)
	}
	if cfg.Ads.EnforcePriceFloor {
		t.Error("price floor enforced by default")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("DB_FILE", "/tmp/other.db")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Database.Path != "/tmp/other.db" {
		t.Errorf("Database.Path = %q, want DB_FILE override", cfg.Database.Path)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("Port = %d, want PORT override", cfg.HTTP.Port)
	}
}
