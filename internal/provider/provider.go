// Package provider defines the interface for email delivery backends.
package provider

import (
	"context"

	"github.com/shineum/ses-redirect/internal/email"
)

// Provider is the interface that email delivery backends must implement.
type Provider interface {
	// Send delivers an email message through this provider and returns
	// the message ID assigned by the backend.
	Send(ctx context.Context, msg *email.Email) (string, error)

	// Name returns the human-readable name of this provider.
	Name() string
}
