package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	pkgConfig "github.com/kerimovok/go-pkg-utils/config"
	"gopkg.in/yaml.v3"
)

// UploadConfig holds upload validation settings
type UploadConfig struct {
	MaxFileSize        string   `yaml:"max_file_size"`
	AllowedRecordTypes []string `yaml:"allowed_record_types"`
}

// StorageConfig holds blob storage settings
type StorageConfig struct {
	UploadDir  string `yaml:"upload_dir"`
	CreateDirs bool   `yaml:"create_dirs"`
}

// LedgerConfig holds connection and signing identity settings for the
// external ledger. The signing credential referenced here is loaded once at
// startup; a missing credential is a fatal startup error, not a per-call one.
type LedgerConfig struct {
	PeerEndpoint string `yaml:"peer_endpoint"`
	GatewayPeer  string `yaml:"gateway_peer"`
	MSPID        string `yaml:"msp_id"`
	CertPath     string `yaml:"cert_path"`
	KeyDir       string `yaml:"key_dir"`
	TLSCertPath  string `yaml:"tls_cert_path"`
	Channel      string `yaml:"channel"`
	Chaincode    string `yaml:"chaincode"`
}

// SweepConfig holds settings for the pending-bind reconciliation sweep
type SweepConfig struct {
	Enabled               bool `yaml:"enabled"`
	IntervalMinutes       int  `yaml:"interval_minutes"`
	PendingTimeoutMinutes int  `yaml:"pending_timeout_minutes"`
}

// RecordsConfig holds the complete records service configuration
type RecordsConfig struct {
	Upload  UploadConfig  `yaml:"upload"`
	Storage StorageConfig `yaml:"storage"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Sweep   SweepConfig   `yaml:"sweep"`
}

// MainConfig holds the root configuration
type MainConfig struct {
	Records RecordsConfig `yaml:"records"`
}

var (
	Config MainConfig
)

// LoadConfig loads the configuration from config/records.yaml
func LoadConfig() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if pkgConfig.GetEnv("GO_ENV") != "production" {
			log.Println("Warning: Failed to load .env file")
		}
	}

	// Read config file
	data, err := os.ReadFile("config/records.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// Store config globally
	Config = config

	log.Println("Records configuration loaded successfully from config/records.yaml")
	return nil
}

// GetConfig returns the current configuration
func GetConfig() MainConfig {
	return Config
}
