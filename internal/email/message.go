// Package email defines the message model passed between the forwarder and
// the delivery providers.
package email

// Email represents an outbound message with all its components.
type Email struct {
	From        string
	ReplyTo     string
	To          []string
	Subject     string
	TextBody    string
	Attachments []Attachment
	MessageID   string
}

// Attachment represents a file attached to an email message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}
