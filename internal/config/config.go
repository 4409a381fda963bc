// Package config loads the operator's OTA settings from a file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rescp17/directOTA/pkg/transfer"
)

const DefaultPort = 3232

var ErrUnsupportedFormat = errors.New("unsupported config format")

// Settings is the operator input for one OTA run.
type Settings struct {
	IP            string `json:"ip" yaml:"ip"`
	Port          int    `json:"port" yaml:"port"`
	BinPath       string `json:"bin_path" yaml:"bin_path"`
	DisableScript bool   `json:"disable_script" yaml:"disable_script"`
	// ProbeTTL is the IP TTL of the identify datagram; 0 keeps the OS default.
	ProbeTTL int `json:"probe_ttl" yaml:"probe_ttl"`
}

// Default returns settings with only the port filled in.
func Default() Settings {
	return Settings{Port: DefaultPort}
}

// Load reads settings from a .json, .yaml or .yml file. Missing keys keep
// their defaults. A relative bin_path is resolved against the config file's
// directory.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config: %w", err)
	}

	s := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &s)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		return Settings{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if s.BinPath != "" && !filepath.IsAbs(s.BinPath) {
		s.BinPath = filepath.Join(filepath.Dir(path), s.BinPath)
	}
	return s, nil
}

// Apply copies the network tunables of the settings into cfg.
func (s Settings) Apply(cfg *transfer.Config) {
	cfg.ProbeTTL = s.ProbeTTL
}

// Request converts the settings into the request the OTA engine runs.
func (s Settings) Request() transfer.Request {
	return transfer.Request{
		Address:  s.IP,
		Port:     s.Port,
		BinPath:  s.BinPath,
		Disabled: s.DisableScript,
	}
}
