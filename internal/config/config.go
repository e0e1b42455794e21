// Package config loads the YAML configuration shared by the TUI and the
// IMAP proxy server.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ProxyConfig configures the Yahoo IMAP proxy server and how the TUI
// reaches it.
type ProxyConfig struct {
	// ListenAddr is where the proxy binds (imapproxy side).
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	// BaseURL is where the TUI finds the proxy (client side).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// IMAPAddr is the upstream IMAP endpoint, host:port with implicit TLS.
	IMAPAddr string `mapstructure:"imap_addr" yaml:"imap_addr"`

	ConnectTimeoutSec int    `mapstructure:"connect_timeout_sec" yaml:"connect_timeout_sec"`
	LogLevel          string `mapstructure:"log_level" yaml:"log_level"`
}

// MailboxConfig bounds how much mail a single fetch pulls.
type MailboxConfig struct {
	// UnreadLimit caps a Gmail unread fetch.
	UnreadLimit int `mapstructure:"unread_limit" yaml:"unread_limit"`

	// IMAPUnreadLimit caps a proxy unread fetch; IMAP fetches are slower
	// so the default is lower.
	IMAPUnreadLimit int `mapstructure:"imap_unread_limit" yaml:"imap_unread_limit"`

	RequestTimeoutSec int `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`
}

// AnalysisConfig configures the categorization backend. An empty APIKey
// selects the built-in rule fallback.
type AnalysisConfig struct {
	Model  string `mapstructure:"model" yaml:"model"`
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
}

// Config is the top-level application configuration.
type Config struct {
	Proxy    ProxyConfig    `mapstructure:"proxy" yaml:"proxy"`
	Mailbox  MailboxConfig  `mapstructure:"mailbox" yaml:"mailbox"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/inboxguardian/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "inboxguardian", "config.yaml")
}

// DefaultDataDir returns where the credential database lives.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "inboxguardian")
}

func defaultConfig() *Config {
	return &Config{
		Proxy: ProxyConfig{
			ListenAddr:        ":3001",
			BaseURL:           "http://localhost:3001",
			IMAPAddr:          "imap.mail.yahoo.com:993",
			ConnectTimeoutSec: 30,
			LogLevel:          "info",
		},
		Mailbox: MailboxConfig{
			UnreadLimit:       300,
			IMAPUnreadLimit:   50,
			RequestTimeoutSec: 60,
		},
		Analysis: AnalysisConfig{
			Model: "gemini-2.0-flash",
		},
	}
}

// Load reads configuration from the given YAML file path using Viper. A
// missing file yields the defaults. The GEMINI_API_KEY environment variable
// overrides the configured analysis key.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("proxy.listen_addr", ":3001")
	v.SetDefault("proxy.base_url", "http://localhost:3001")
	v.SetDefault("proxy.imap_addr", "imap.mail.yahoo.com:993")
	v.SetDefault("proxy.connect_timeout_sec", 30)
	v.SetDefault("proxy.log_level", "info")
	v.SetDefault("mailbox.unread_limit", 300)
	v.SetDefault("mailbox.imap_unread_limit", 50)
	v.SetDefault("mailbox.request_timeout_sec", 60)
	v.SetDefault("analysis.model", "gemini-2.0-flash")

	cfg := defaultConfig()
	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Analysis.APIKey = key
	}
	return cfg, nil
}
