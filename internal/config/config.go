// Package config loads the process-wide configuration record: everything
// downstream (the store connection, the CNAM client, the HTTP listener)
// reads it once at startup and never mutates it.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults is the optional on-disk overlay: operators can ship a YAML
// file with stable per-environment values (the CNAM timeout and the
// xml-curl Basic-Auth pair, which environment variables override) while
// the store URI and CNAM credentials are read from the environment only.
type Defaults struct {
	CNAMTimeout time.Duration `yaml:"cnam_timeout"`
	XMLCurlUser string        `yaml:"xmlcurl_basic_user"`
	XMLCurlPass string        `yaml:"xmlcurl_basic_pass"`
}

// Config is the fully resolved process configuration.
type Config struct {
	Port     string
	StoreURI string

	CNAMProjectID string
	CNAMAPIToken  string
	CNAMSpaceHost string
	CNAMTimeout   time.Duration

	XMLCurlUser string
	XMLCurlPass string
}

// Load resolves configuration from the environment per the documented
// variables (PORT, STORE_URI, CNAM_PROJECT_ID, CNAM_API_TOKEN,
// CNAM_SPACE_HOST), optionally overlaying defaultsPath first when it
// points at a readable file. Environment values always win over the file.
func Load(defaultsPath string) (*Config, error) {
	var d Defaults
	if defaultsPath != "" {
		if f, err := os.Open(defaultsPath); err == nil {
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(&d); err != nil {
				return nil, fmt.Errorf("decode defaults file: %w", err)
			}
		}
	}

	cfg := &Config{
		Port:          envOr("PORT", "8080"),
		StoreURI:      os.Getenv("STORE_URI"),
		CNAMProjectID: os.Getenv("CNAM_PROJECT_ID"),
		CNAMAPIToken:  os.Getenv("CNAM_API_TOKEN"),
		CNAMSpaceHost: os.Getenv("CNAM_SPACE_HOST"),
		CNAMTimeout:   d.CNAMTimeout,
		XMLCurlUser:   envOr("XMLCURL_BASIC_USER", d.XMLCurlUser),
		XMLCurlPass:   envOr("XMLCURL_BASIC_PASS", d.XMLCurlPass),
	}

	if cfg.StoreURI == "" {
		return nil, fmt.Errorf("STORE_URI is required")
	}

	return cfg, nil
}

// ListenAddr returns the address to bind, derived from Port.
func (c *Config) ListenAddr() string {
	return ":" + c.Port
}

// envOr returns the environment variable named key, or fallback when unset
// or empty. fallback is either a hardcoded default or a value already
// read from the optional YAML overlay.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
