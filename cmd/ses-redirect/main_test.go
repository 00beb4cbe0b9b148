package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shineum/ses-redirect/internal/config"
	"github.com/shineum/ses-redirect/internal/forwarder"
	"github.com/shineum/ses-redirect/internal/provider/stdout"
	"github.com/shineum/ses-redirect/internal/storage/disk"
)

const testEvent = `{
  "Records": [
    {
      "eventSource": "aws:ses",
      "eventVersion": "1.0",
      "ses": {
        "mail": {
          "messageId": "o2ccn1ldh3qpb1e0bh5nme3hfn20n8ovs0ol2881",
          "source": "orig@sender.org",
          "commonHeaders": {
            "from": ["Original Sender <orig@sender.org>"],
            "to": ["info@mydomain.com"],
            "subject": "Hello"
          }
        }
      }
    }
  ]
}`

func TestRunOnce_LocalStore(t *testing.T) {
	dir := t.TempDir()
	key := "o2ccn1ldh3qpb1e0bh5nme3hfn20n8ovs0ol2881"
	if err := os.WriteFile(filepath.Join(dir, key), []byte("Subject: Hello\r\n\r\nbody"), 0o644); err != nil {
		t.Fatal(err)
	}
	eventPath := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(eventPath, []byte(testEvent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{Mail: config.MailConfig{
		Domain:      strPtr("mydomain.com"),
		DefaultFrom: strPtr("no-reply"),
		DefaultTo:   strPtr("me@gmail.com"),
		Aliases:     map[string]string{"info": "boss@yahoo.com"},
	}}
	fwd := forwarder.New(cfg, disk.New(dir), stdout.NewWithWriter(os.Stderr))

	if err := runOnce(context.Background(), fwd, eventPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, key)); !os.IsNotExist(err) {
		t.Errorf("archived message should be deleted, stat error: %v", err)
	}
}

func TestRunOnce_BadEventFile(t *testing.T) {
	eventPath := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(eventPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	fwd := forwarder.New(&config.Config{}, disk.New(t.TempDir()), stdout.NewWithWriter(os.Stderr))
	if err := runOnce(context.Background(), fwd, eventPath); err == nil {
		t.Fatal("expected error for malformed event file")
	}
}

func TestSelectProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{provider: "stdout", want: "stdout"},
		{provider: "pigeon", wantErr: true},
	}

	for _, tt := range tests {
		p, err := selectProvider(context.Background(), &config.Config{Provider: tt.provider})
		if tt.wantErr {
			if err == nil {
				t.Errorf("selectProvider(%q): expected error", tt.provider)
			}
			continue
		}
		if err != nil {
			t.Fatalf("selectProvider(%q): unexpected error: %v", tt.provider, err)
		}
		if p.Name() != tt.want {
			t.Errorf("selectProvider(%q): got %q, want %q", tt.provider, p.Name(), tt.want)
		}
	}
}

func TestSelectStore(t *testing.T) {
	dir := t.TempDir()
	s, err := selectStore(context.Background(), &config.Config{Storage: config.StorageConfig{Dir: dir}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Location() != dir {
		t.Errorf("Location(): got %q, want %q", s.Location(), dir)
	}

	if _, err := selectStore(context.Background(), &config.Config{}); err == nil {
		t.Error("expected error when neither bucket nor dir is configured")
	}
}

func strPtr(s string) *string { return &s }
