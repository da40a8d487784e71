// Package config loads YAML configuration for the noise-demo command.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DemoConfig configures one side of a noise-demo handshake run.
type DemoConfig struct {
	Listen       string `yaml:"listen"`
	Connect      string `yaml:"connect"`
	Pattern      string `yaml:"pattern"`
	DH           string `yaml:"dh"`
	Cipher       string `yaml:"cipher"`
	Hash         string `yaml:"hash"`
	StaticKeyHex string `yaml:"static_key_hex"`
	PeerKeyHex   string `yaml:"peer_key_hex"`
	PSKHex       string `yaml:"psk_hex"`
	LogLevel     string `yaml:"log_level"`
}

// DefaultDemoConfig returns a config using the base Noise_XX profile.
func DefaultDemoConfig() *DemoConfig {
	return &DemoConfig{
		Listen:   "127.0.0.1:7913",
		Pattern:  "XX",
		DH:       "25519",
		Cipher:   "ChaChaPoly",
		Hash:     "SHA256",
		LogLevel: "info",
	}
}

// LoadDemoConfig loads a DemoConfig from a YAML file, falling back to
// DefaultDemoConfig's fields for anything the file leaves unset.
func LoadDemoConfig(path string) (*DemoConfig, error) {
	cfg := DefaultDemoConfig()
	if err := loadYAML(path, cfg); err != nil {
		return nil, errors.Wrap(err, "load demo config")
	}
	return cfg, nil
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}
