// Package parser reads the header block of an archived RFC 5322 message.
package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime"
	"net/mail"
	"strings"

	"github.com/shineum/ses-redirect/internal/email"
)

var wordDecoder = new(mime.WordDecoder)

// ParseHeaders extracts From, To, Subject and Message-ID from a raw message.
// The body is not read. Encoded-word subjects are decoded, and left as they
// are when decoding fails.
func ParseHeaders(raw []byte) (*email.Email, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	result := &email.Email{
		From:      msg.Header.Get("From"),
		MessageID: msg.Header.Get("Message-Id"),
		To:        parseAddressList(msg.Header.Get("To")),
	}

	subject := msg.Header.Get("Subject")
	if decoded, err := wordDecoder.DecodeHeader(subject); err == nil {
		subject = decoded
	} else {
		slog.Warn("failed to decode subject, keeping raw value",
			"subject", subject,
			"error", err,
		)
	}
	result.Subject = subject

	return result, nil
}

// parseAddressList splits a comma-separated address list into individual addresses.
func parseAddressList(raw string) []string {
	if raw == "" {
		return nil
	}

	addresses, err := mail.ParseAddressList(raw)
	if err != nil {
		// Fall back to simple comma split if RFC 5322 parsing fails
		parts := strings.Split(raw, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		result = append(result, addr.Address)
	}
	return result
}
