package forwarder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/shineum/ses-redirect/internal/address"
	"github.com/shineum/ses-redirect/internal/email"
)

// failureReport is attached as JSON to the administrator notification.
type failureReport struct {
	Error           string                  `json:"error"`
	Event           events.SimpleEmailEvent `json:"x-ses-event"`
	RequestedObject objectRef               `json:"x-s3-requested-object"`
}

type objectRef struct {
	Bucket string `json:"Bucket"`
	Key    string `json:"Key"`
}

const notificationBody = `See the attachment for the error's details.

Domain: %s
Bucket: %s
Original Message ID / S3 Key: %s
`

// notifyFailure emails the error to the administrator. It is best effort:
// its own failures are logged and never returned.
func (f *Forwarder) notifyFailure(ctx context.Context, logger *slog.Logger, cause error, event events.SimpleEmailEvent, key string) {
	mail := f.cfg.Mail
	addrs, err := f.cfg.NotificationAddressConfig()
	if err != nil {
		logger.Error("cannot send failure notification", "error", err)
		return
	}

	msg, err := f.buildNotification(addrs, cause, event, key)
	if err != nil {
		logger.Error("cannot send failure notification", "error", err)
		return
	}

	sentID, err := f.provider.Send(ctx, msg)
	if err != nil {
		logger.Error("failed to send failure notification",
			"to", mail.ErrorTo,
			"error", err,
		)
		return
	}
	logger.Info("failure notification sent",
		"to", mail.ErrorTo,
		"provider_message_id", sentID,
	)
}

func (f *Forwarder) buildNotification(addrs *address.Config, cause error, event events.SimpleEmailEvent, key string) (*email.Email, error) {
	report := failureReport{
		Error: cause.Error(),
		Event: event,
		RequestedObject: objectRef{
			Bucket: f.store.Location(),
			Key:    key,
		},
	}
	data, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode failure report: %w", err)
	}

	return &email.Email{
		From:      addrs.SenderAddress(),
		To:        []string{f.cfg.Mail.ErrorTo},
		Subject:   `An error occurred redirecting message ID "` + key + `"`,
		TextBody:  fmt.Sprintf(notificationBody, addrs.Domain(), f.store.Location(), key),
		MessageID: fmt.Sprintf("<%s@%s>", f.newID(), addrs.Domain()),
		Attachments: []email.Attachment{
			{
				Filename:    "error_" + strings.ReplaceAll(key, "/", "_") + ".json",
				ContentType: "application/json",
				Content:     data,
			},
		},
	}, nil
}
