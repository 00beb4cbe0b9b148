// Package address decides where an inbound message is redirected, based on
// the mailbox alias it was sent to.
package address

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// ConfigError is returned by New when a required field is not defined.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not defined", e.Field)
}

// Aliases is either a raw JSON alias table or an already parsed one.
// The zero value stands for an omitted table.
type Aliases struct {
	raw    string
	table  map[string]string
	isRaw  bool
	parsed bool
}

// RawAliases wraps a JSON object of mailbox to destination address.
func RawAliases(s string) Aliases {
	return Aliases{raw: s, isRaw: true}
}

// ParsedAliases wraps an alias table that is already a mapping.
func ParsedAliases(m map[string]string) Aliases {
	return Aliases{table: m, parsed: true}
}

// resolve turns the union into a mapping. A JSON string that does not decode
// into an object of strings yields an empty table.
func (a Aliases) resolve() map[string]string {
	switch {
	case a.isRaw:
		var m map[string]string
		if err := json.Unmarshal([]byte(a.raw), &m); err != nil || m == nil {
			return map[string]string{}
		}
		return m
	case a.parsed && a.table != nil:
		return maps.Clone(a.table)
	default:
		return map[string]string{}
	}
}

// Config holds the owning domain, the default sender and recipient, and the
// alias table. It is immutable once built.
type Config struct {
	domain           string
	defaultSender    string
	defaultRecipient string
	aliases          map[string]string
}

// Fields holds the raw settings of a Config. A nil string means the
// setting was not defined at all; an empty string is a defined value.
type Fields struct {
	Domain           *string
	DefaultSender    *string
	DefaultRecipient *string
	Aliases          Aliases
}

// New builds a Config from settings that are all defined.
func New(domain, defaultSender, defaultRecipient string, aliases Aliases) (*Config, error) {
	return FromFields(Fields{
		Domain:           &domain,
		DefaultSender:    &defaultSender,
		DefaultRecipient: &defaultRecipient,
		Aliases:          aliases,
	})
}

// FromFields builds a Config. Fields are validated in declaration order and
// the first undefined one is reported as a *ConfigError. Empty strings are
// accepted.
func FromFields(f Fields) (*Config, error) {
	c := &Config{
		domain:           deref(f.Domain),
		defaultSender:    deref(f.DefaultSender),
		defaultRecipient: deref(f.DefaultRecipient),
		aliases:          f.Aliases.resolve(),
	}

	required := []struct {
		name    string
		defined bool
	}{
		{"domain", f.Domain != nil},
		{"defaultSender", f.DefaultSender != nil},
		{"defaultRecipient", f.DefaultRecipient != nil},
		{"aliases", c.aliases != nil},
	}
	for _, field := range required {
		if !field.defined {
			return nil, &ConfigError{Field: field.name}
		}
	}

	return c, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Domain returns the bare domain managed by this configuration.
func (c *Config) Domain() string { return c.domain }

// DefaultRecipient returns the fallback destination address.
func (c *Config) DefaultRecipient() string { return c.defaultRecipient }

// Aliases returns a copy of the alias table.
func (c *Config) Aliases() map[string]string { return maps.Clone(c.aliases) }

// Lookup returns the destination for a mailbox, if it has an alias.
func (c *Config) Lookup(mailbox string) (string, bool) {
	dest, ok := c.aliases[mailbox]
	return dest, ok
}

// SenderAddress returns the default sender as a full address, appending the
// domain when only a mailbox was configured.
func (c *Config) SenderAddress() string {
	if strings.Contains(c.defaultSender, "@") {
		return c.defaultSender
	}
	return c.defaultSender + "@" + c.domain
}
