// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for the redirect function.
package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shineum/ses-redirect/internal/address"
)

// Config holds the complete application configuration.
type Config struct {
	Provider string        `yaml:"provider"`
	Mail     MailConfig    `yaml:"mail"`
	Storage  StorageConfig `yaml:"storage"`
	SES      SESConfig     `yaml:"ses"`
	Logging  LoggingConfig `yaml:"logging"`
}

// MailConfig holds the addressing rules for redirected messages.
// Domain, DefaultFrom and DefaultTo are nil when not set anywhere; a key
// set to an empty value is kept as an empty string.
type MailConfig struct {
	Domain          *string           `yaml:"domain"`
	DefaultFrom     *string           `yaml:"default_from"`
	DefaultTo       *string           `yaml:"default_to"`
	ErrorTo         string            `yaml:"error_to"`
	RedirectMessage string            `yaml:"redirect_message"`
	Aliases         map[string]string `yaml:"aliases"`

	// AliasesJSON is the ALIASES environment value. When set it takes
	// precedence over Aliases.
	AliasesJSON string `yaml:"-"`
}

// StorageConfig says where SES archived the inbound messages.
type StorageConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
	// Dir selects a local directory store instead of S3.
	Dir string `yaml:"dir"`
}

// SESConfig holds AWS SES v2 configuration.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

// AddressConfig builds the addressing rules for one invocation.
func (c *Config) AddressConfig() (*address.Config, error) {
	aliases := address.ParsedAliases(c.Mail.Aliases)
	if c.Mail.AliasesJSON != "" {
		aliases = address.RawAliases(c.Mail.AliasesJSON)
	}
	return address.FromFields(c.Mail.fields(aliases))
}

// NotificationAddressConfig builds the addressing rules used for failure
// notifications, which never go through the alias table.
func (c *Config) NotificationAddressConfig() (*address.Config, error) {
	return address.FromFields(c.Mail.fields(address.Aliases{}))
}

func (m MailConfig) fields(aliases address.Aliases) address.Fields {
	return address.Fields{
		Domain:           m.Domain,
		DefaultSender:    m.DefaultFrom,
		DefaultRecipient: m.DefaultTo,
		Aliases:          aliases,
	}
}

// ObjectKey returns the storage key SES used for the given message ID.
func (c *Config) ObjectKey(messageID string) string {
	if c.Storage.Prefix == "" {
		return messageID
	}
	return path.Join(c.Storage.Prefix, messageID)
}

// NotificationsEnabled returns true if failures are reported by email.
func (c *Config) NotificationsEnabled() bool {
	return c.Mail.ErrorTo != ""
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Provider = "ses"
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Apart from the addressing settings, only non-empty environment variables
// override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}

	// Addressing settings override whenever the variable is present, even
	// when it is empty.
	if v, ok := os.LookupEnv("DOMAIN"); ok {
		c.Mail.Domain = &v
	}
	if v, ok := os.LookupEnv("DEFAULT_EMAIL_FROM"); ok {
		c.Mail.DefaultFrom = &v
	}
	if v, ok := os.LookupEnv("DEFAULT_EMAIL_TO"); ok {
		c.Mail.DefaultTo = &v
	}
	if v := os.Getenv("ERROR_EMAIL_TO"); v != "" {
		c.Mail.ErrorTo = v
	}
	if v := os.Getenv("REDIRECT_MESSAGE"); v != "" {
		c.Mail.RedirectMessage = v
	}
	if v := os.Getenv("ALIASES"); v != "" {
		c.Mail.AliasesJSON = v
	}

	if v := os.Getenv("BUCKET_NAME"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("OBJECT_KEY_PREFIX"); v != "" {
		c.Storage.Prefix = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		c.Storage.Region = v
	}
	if v := os.Getenv("STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}

	if v := os.Getenv("SES_REGION"); v != "" {
		c.SES.Region = v
	}
	if v := os.Getenv("SES_ACCESS_KEY_ID"); v != "" {
		c.SES.AccessKeyID = v
	}
	if v := os.Getenv("SES_SECRET_ACCESS_KEY"); v != "" {
		c.SES.SecretAccessKey = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}
