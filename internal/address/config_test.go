package address

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

const (
	testDomain = "mydomain.com"
	testFrom   = "no-reply"
	testTo     = "me@gmail.com"
)

var testAliases = map[string]string{
	"info":    "boss@yahoo.com",
	"it-team": "you@gmail.com",
	"support": "help@hotmail.com",
}

func strPtr(s string) *string { return &s }

func TestFromFields_RequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fields    Fields
		wantField string
	}{
		{"missing domain", Fields{DefaultSender: strPtr(testFrom), DefaultRecipient: strPtr(testTo)}, "domain"},
		{"missing default sender", Fields{Domain: strPtr(testDomain), DefaultRecipient: strPtr(testTo)}, "defaultSender"},
		{"missing default recipient", Fields{Domain: strPtr(testDomain), DefaultSender: strPtr(testFrom)}, "defaultRecipient"},
		{"all missing reports domain first", Fields{}, "domain"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := FromFields(tt.fields)
			if err == nil {
				t.Fatalf("expected error, got config %+v", cfg)
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type: got %T, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field: got %q, want %q", cfgErr.Field, tt.wantField)
			}
			if got, want := err.Error(), tt.wantField+" is not defined"; got != want {
				t.Errorf("Error(): got %q, want %q", got, want)
			}
		})
	}
}

func TestNew_EmptyStringsAreDefined(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		domain string
		from   string
		to     string
	}{
		{"empty domain", "", testFrom, testTo},
		{"empty default sender", testDomain, "", testTo},
		{"empty default recipient", testDomain, testFrom, ""},
		{"all empty", "", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := New(tt.domain, tt.from, tt.to, Aliases{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Domain() != tt.domain {
				t.Errorf("Domain(): got %q, want %q", cfg.Domain(), tt.domain)
			}
			if cfg.DefaultRecipient() != tt.to {
				t.Errorf("DefaultRecipient(): got %q, want %q", cfg.DefaultRecipient(), tt.to)
			}
		})
	}
}

func TestFromFields_EmptyDomainMatchesNothing(t *testing.T) {
	t.Parallel()

	cfg, err := FromFields(Fields{Domain: strPtr(""), DefaultSender: strPtr(testFrom), DefaultRecipient: strPtr(testTo)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Resolve([]string{"user@", "info@mydomain.com"}, cfg); !reflect.DeepEqual(got, []string{testTo}) {
		t.Errorf("Resolve: got %v, want [%s]", got, testTo)
	}
	if got := cfg.SenderAddress(); got != "no-reply@" {
		t.Errorf("SenderAddress(): got %q, want %q", got, "no-reply@")
	}
}

func TestNew_Accessors(t *testing.T) {
	t.Parallel()

	cfg, err := New(testDomain, testFrom, testTo, ParsedAliases(testAliases))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.Domain(); got != testDomain {
		t.Errorf("Domain(): got %q, want %q", got, testDomain)
	}
	if got := cfg.DefaultRecipient(); got != testTo {
		t.Errorf("DefaultRecipient(): got %q, want %q", got, testTo)
	}
	if got := cfg.Aliases(); !reflect.DeepEqual(got, testAliases) {
		t.Errorf("Aliases(): got %v, want %v", got, testAliases)
	}
	if dest, ok := cfg.Lookup("info"); !ok || dest != "boss@yahoo.com" {
		t.Errorf("Lookup(info): got (%q, %v), want (%q, true)", dest, ok, "boss@yahoo.com")
	}
	if _, ok := cfg.Lookup("Info"); ok {
		t.Error("Lookup should be case-sensitive")
	}
}

func TestAliases_Variants(t *testing.T) {
	t.Parallel()

	encoded, err := json.Marshal(testAliases)
	if err != nil {
		t.Fatalf("marshal aliases: %v", err)
	}

	tests := []struct {
		name    string
		aliases Aliases
		want    map[string]string
	}{
		{"omitted", Aliases{}, map[string]string{}},
		{"mapping", ParsedAliases(testAliases), testAliases},
		{"nil mapping", ParsedAliases(nil), map[string]string{}},
		{"json string", RawAliases(string(encoded)), testAliases},
		{"empty string", RawAliases(""), map[string]string{}},
		{"malformed json", RawAliases("{info: boss"), map[string]string{}},
		{"json null", RawAliases("null"), map[string]string{}},
		{"json with non-string values", RawAliases(`{"info": 42}`), map[string]string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := New(testDomain, testFrom, testTo, tt.aliases)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := cfg.Aliases(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Aliases(): got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAliases_Immutable(t *testing.T) {
	t.Parallel()

	source := map[string]string{"info": "boss@yahoo.com"}
	cfg, err := New(testDomain, testFrom, testTo, ParsedAliases(source))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	source["info"] = "changed@yahoo.com"
	view := cfg.Aliases()
	view["info"] = "changed-again@yahoo.com"

	if dest, _ := cfg.Lookup("info"); dest != "boss@yahoo.com" {
		t.Errorf("Lookup(info) after mutation: got %q, want %q", dest, "boss@yahoo.com")
	}
}

func TestSenderAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from string
		want string
	}{
		{"mailbox only", "no-reply", "no-reply@mydomain.com"},
		{"full address", "no-reply@mydomain.com", "no-reply@mydomain.com"},
		{"full address on another domain", "bounce@other.org", "bounce@other.org"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := New(testDomain, tt.from, testTo, Aliases{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := cfg.SenderAddress(); got != tt.want {
				t.Errorf("SenderAddress(): got %q, want %q", got, tt.want)
			}
		})
	}
}
