// Package config loads the service's HCL configuration file.
package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Defaults applied when the config file leaves a field unset.
const (
	DefaultListenAddr    = "127.0.0.1:8000"
	DefaultLoginTokenTTL = 1800 * time.Second
	DefaultSendTokenTTL  = 86400 * time.Second
)

// Config is the top-level service configuration.
type Config struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `hcl:"listen_addr,optional"`

	// BaseURL, when set, is used as the external base for receive links.
	// When empty, links are derived from the incoming request's host.
	BaseURL string `hcl:"base_url,optional"`

	// LoginTokenTTLSeconds is how long a login token stays valid.
	LoginTokenTTLSeconds int64 `hcl:"login_token_ttl,optional"`

	// SendTokenTTLSeconds is how long a send token stays receivable.
	SendTokenTTLSeconds int64 `hcl:"send_token_ttl,optional"`

	// Firebase configures the Realtime Database backing the service.
	Firebase *Firebase `hcl:"firebase,block"`
}

// Firebase is the connection configuration for the Realtime Database.
type Firebase struct {
	// CredentialsFile is the path to a service account key file.
	CredentialsFile string `hcl:"credentials_file"`

	// DatabaseURL is the database endpoint, e.g.
	// "https://example.firebaseio.com/".
	DatabaseURL string `hcl:"database_url"`
}

// FromFile decodes the HCL configuration at path and applies defaults.
func FromFile(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.LoginTokenTTLSeconds == 0 {
		cfg.LoginTokenTTLSeconds = int64(DefaultLoginTokenTTL.Seconds())
	}
	if cfg.SendTokenTTLSeconds == 0 {
		cfg.SendTokenTTLSeconds = int64(DefaultSendTokenTTL.Seconds())
	}

	return &cfg, nil
}

// Validate checks the configuration, collecting all problems.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Firebase == nil {
		result = multierror.Append(result,
			fmt.Errorf("firebase block is required"))
	} else {
		if c.Firebase.CredentialsFile == "" {
			result = multierror.Append(result,
				fmt.Errorf("firebase credentials_file is required"))
		}
		if c.Firebase.DatabaseURL == "" {
			result = multierror.Append(result,
				fmt.Errorf("firebase database_url is required"))
		}
	}

	if c.LoginTokenTTLSeconds < 0 {
		result = multierror.Append(result,
			fmt.Errorf("login_token_ttl must be positive"))
	}
	if c.SendTokenTTLSeconds < 0 {
		result = multierror.Append(result,
			fmt.Errorf("send_token_ttl must be positive"))
	}

	return result.ErrorOrNil()
}

// LoginTokenTTL returns the login token lifetime as a duration.
func (c *Config) LoginTokenTTL() time.Duration {
	return time.Duration(c.LoginTokenTTLSeconds) * time.Second
}

// SendTokenTTL returns the send token lifetime as a duration.
func (c *Config) SendTokenTTL() time.Duration {
	return time.Duration(c.SendTokenTTLSeconds) * time.Second
}
