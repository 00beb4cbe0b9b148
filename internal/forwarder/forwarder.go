// Package forwarder runs one SES inbound invocation: it fetches the archived
// message, redirects it to the resolved recipients with the original
// attached, and removes the archived copy once it has been sent.
package forwarder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/shineum/ses-redirect/internal/address"
	"github.com/shineum/ses-redirect/internal/config"
	"github.com/shineum/ses-redirect/internal/email"
	"github.com/shineum/ses-redirect/internal/parser"
	"github.com/shineum/ses-redirect/internal/provider"
	"github.com/shineum/ses-redirect/internal/storage"
)

// Forwarder redirects archived inbound messages.
type Forwarder struct {
	cfg      *config.Config
	store    storage.Store
	provider provider.Provider

	// newID generates the unique part of outbound Message-IDs.
	newID func() string
}

// New creates a Forwarder.
func New(cfg *config.Config, store storage.Store, prov provider.Provider) *Forwarder {
	return &Forwarder{
		cfg:      cfg,
		store:    store,
		provider: prov,
		newID:    uuid.NewString,
	}
}

// HandleEvent processes every record of an SES event in order and stops at
// the first failure. It has the signature expected by lambda.Start.
func (f *Forwarder) HandleEvent(ctx context.Context, event events.SimpleEmailEvent) error {
	for _, record := range event.Records {
		if err := f.handleRecord(ctx, event, record); err != nil {
			return err
		}
	}
	return nil
}

// handleRecord redirects a single inbound message. On failure the error is
// returned and, when configured, reported to the administrator along with
// the event that carried the message.
func (f *Forwarder) handleRecord(ctx context.Context, event events.SimpleEmailEvent, record events.SimpleEmailRecord) error {
	messageID := record.SES.Mail.MessageID
	key := f.cfg.ObjectKey(messageID)
	logger := slog.With("message_id", messageID, "key", key)

	err := f.redirect(ctx, logger, record, key)
	if err == nil {
		return nil
	}

	logger.Error("failed to redirect message", "error", err)
	if f.cfg.NotificationsEnabled() {
		f.notifyFailure(ctx, logger, err, event, key)
	}
	return err
}

func (f *Forwarder) redirect(ctx context.Context, logger *slog.Logger, record events.SimpleEmailRecord, key string) error {
	mail := record.SES.Mail
	if mail.MessageID == "" {
		return errors.New("event record has no message ID")
	}

	addrs, err := f.cfg.AddressConfig()
	if err != nil {
		return fmt.Errorf("invalid address configuration: %w", err)
	}

	raw, err := f.store.Fetch(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to fetch archived message: %w", err)
	}

	headers := originalHeaders(logger, mail.CommonHeaders, raw)
	recipients := address.Resolve(headers.To, addrs)

	msg := &email.Email{
		From:      addrs.SenderAddress(),
		ReplyTo:   headers.From,
		To:        recipients,
		Subject:   headers.Subject,
		TextBody:  f.cfg.Mail.RedirectMessage + headers.From + "\n\n",
		MessageID: fmt.Sprintf("<%s@%s>", f.newID(), addrs.Domain()),
		Attachments: []email.Attachment{
			{
				Filename:    mail.MessageID + ".eml",
				ContentType: "message/rfc822",
				Content:     raw,
			},
		},
	}

	sentID, err := f.provider.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send redirected message via %s: %w", f.provider.Name(), err)
	}
	logger.Info("mail redirected",
		"provider", f.provider.Name(),
		"provider_message_id", sentID,
		"recipients", recipients,
	)

	versionID, err := f.store.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to delete archived message: %w", err)
	}
	logger.Info("archived message deleted", "version_id", versionID)

	return nil
}

// originalHeaders returns the sender, recipients and subject of the inbound
// message. The event's common headers are preferred. Fields they leave empty
// are read from the archived message itself.
func originalHeaders(logger *slog.Logger, common events.SimpleEmailCommonHeaders, raw []byte) *email.Email {
	h := &email.Email{
		To:      common.To,
		Subject: common.Subject,
	}
	if len(common.From) > 0 {
		h.From = common.From[0]
	}

	if h.From != "" && h.Subject != "" && len(h.To) > 0 {
		return h
	}

	parsed, err := parser.ParseHeaders(raw)
	if err != nil {
		logger.Warn("failed to read headers of archived message", "error", err)
		return h
	}
	if h.From == "" {
		h.From = parsed.From
	}
	if h.Subject == "" {
		h.Subject = parsed.Subject
	}
	if len(h.To) == 0 {
		h.To = parsed.To
	}
	return h
}
