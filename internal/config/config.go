// Package config loads reportlens configuration from a TOML file with
// environment variable overrides for credentials and the listen address.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the runtime configuration for the analysis service.
type Config struct {
	// ListenAddr is the HTTP listen address for the serve command.
	ListenAddr string `toml:"listen_addr"`

	// UploadDir is where uploaded files are stored for the request's
	// lifetime. Defaults to a directory under the OS temp dir.
	UploadDir string `toml:"upload_dir"`

	// DataDir holds the static reference JSON tables.
	DataDir string `toml:"data_dir"`

	// StaticDir is an optional directory of static files to serve.
	StaticDir string `toml:"static_dir"`

	// TerminologyAPIKey enables the terminology tagger stage.
	TerminologyAPIKey string `toml:"terminology_api_key"`

	// FoodDataAPIKey enables food ranking in both guidance paths.
	FoodDataAPIKey string `toml:"food_data_api_key"`

	// LowResource reduces fan-out sizes and per-call timeouts for
	// constrained deployments.
	LowResource bool `toml:"low_resource"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ListenAddr: ":5000",
		UploadDir:  filepath.Join(os.TempDir(), "reportlens-uploads"),
		DataDir:    "data",
	}
}

// Load reads the TOML file at path, if it exists, and applies
// environment overrides. An empty path checks reportlens.toml in the
// working directory and ~/.reportlens/config.toml.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		locations := []string{"reportlens.toml"}
		if home, err := os.UserHomeDir(); err == nil {
			locations = append(locations, filepath.Join(home, ".reportlens", "config.toml"))
		}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv merges environment variables over file values.
// The unprefixed credential names match the original deployment scripts.
func applyEnv(cfg *Config) {
	for _, name := range []string{"REPORTLENS_UMLS_API_KEY", "UMLS_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			cfg.TerminologyAPIKey = v
			break
		}
	}
	for _, name := range []string{"REPORTLENS_FDC_API_KEY", "USDA_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			cfg.FoodDataAPIKey = v
			break
		}
	}
	if v := os.Getenv("REPORTLENS_ADDR"); v != "" {
		cfg.ListenAddr = v
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	if v := os.Getenv("REPORTLENS_LOW_RESOURCE"); v == "1" || v == "true" {
		cfg.LowResource = true
	}
}
