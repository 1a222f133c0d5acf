package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsUnknownNetwork(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = "devnet"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown network")
	}
}

func TestValidateRequiresDataDirForLevelDBBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendLevelDB
	cfg.DataDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing data_dir")
	}
}

func TestValidateRequiresDSNForMySQLBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMySQL
	cfg.MySQLDSN = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing mysql_dsn")
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != DefaultConfig().HTTPAddr {
		t.Errorf("expected default http_addr, got %q", cfg.HTTPAddr)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTPAddr = ":9090"
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.HTTPAddr != ":9090" {
		t.Errorf("expected http_addr :9090, got %q", loaded.HTTPAddr)
	}
}
