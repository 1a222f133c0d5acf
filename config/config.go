// Package config loads farmd's process configuration: JSON file plus .env
// overrides, following the teacher's config.Load/Validate shape.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Network is the NETWORK flag from spec §6: it toggles the whitelist gate on
// the save path.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// RepoBackend selects which save.Repository/save.EventStore implementation
// cmd/farmd wires up.
type RepoBackend string

const (
	BackendLevelDB RepoBackend = "leveldb"
	BackendMySQL   RepoBackend = "mysql"
)

// TLSConfig holds paths to the PEM files needed to serve httpapi over
// mutual TLS. Nil (or all paths empty) means plain HTTP.
type TLSConfig struct {
	CACert   string `json:"ca_cert,omitempty"`
	NodeCert string `json:"node_cert,omitempty"`
	NodeKey  string `json:"node_key,omitempty"`
}

// Config holds all farmd process configuration.
type Config struct {
	Network Network `json:"network"`

	HTTPAddr     string `json:"http_addr"`
	HTTPAuthToken string `json:"http_auth_token,omitempty"` // empty → no auth

	Backend  RepoBackend `json:"backend"`
	DataDir  string      `json:"data_dir"`  // LevelDB backend
	MySQLDSN string      `json:"mysql_dsn"` // MySQL backend

	KeystorePath     string `json:"keystore_path"`
	KeystorePassword string `json:"-"` // never persisted; read from env only

	EthRPCURL       string `json:"eth_rpc_url"`
	FarmContractHex string `json:"farm_contract"`

	WhitelistAddresses []string `json:"whitelist_addresses,omitempty"`

	TLS *TLSConfig `json:"tls,omitempty"` // nil -> plain HTTP
}

// DefaultConfig returns a single-process development configuration.
func DefaultConfig() *Config {
	return &Config{
		Network:  NetworkTestnet,
		HTTPAddr: ":8080",
		Backend:  BackendLevelDB,
		DataDir:  "./data",
	}
}

// Load reads a JSON config file from path, then applies .env overrides (via
// godotenv) for the fields spec §6 calls out as environment-driven: NETWORK
// and the MySQL DSN. The core itself reads Network once per request, off the
// Config value Load returns, never by calling os.Getenv mid-pipeline.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// godotenv.Load is a no-op error (file absent) when no .env is present;
	// only a malformed .env file is worth failing startup over.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if v := os.Getenv("NETWORK"); v != "" {
		cfg.Network = Network(v)
	}
	if v := os.Getenv("FARMD_MYSQL_DSN"); v != "" {
		cfg.MySQLDSN = v
		cfg.Backend = BackendMySQL
	}
	if v := os.Getenv("FARMD_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	cfg.KeystorePassword = os.Getenv("FARMD_KEYSTORE_PASSWORD")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required fields are present and well-formed.
func (c *Config) Validate() error {
	if c.Network != NetworkMainnet && c.Network != NetworkTestnet {
		return fmt.Errorf("network must be %q or %q, got %q", NetworkMainnet, NetworkTestnet, c.Network)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("http_addr must not be empty")
	}
	switch c.Backend {
	case BackendLevelDB:
		if c.DataDir == "" {
			return fmt.Errorf("data_dir must not be empty for the leveldb backend")
		}
	case BackendMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("mysql_dsn must not be empty for the mysql backend")
		}
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendLevelDB, BackendMySQL, c.Backend)
	}
	return nil
}

// Save writes the config to path as formatted JSON. KeystorePassword is
// never included, since the struct tag excludes it from marshaling.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
