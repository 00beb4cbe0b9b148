// Package storage defines where archived inbound messages are kept.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no archived object exists for a key.
var ErrNotFound = errors.New("archived message not found")

// Store gives access to archived raw messages by key.
type Store interface {
	// Fetch returns the raw bytes stored under key.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object stored under key and returns the version ID
	// of the delete marker, if the backend has one.
	Delete(ctx context.Context, key string) (string, error)

	// Location names the container holding the objects, such as a bucket.
	Location() string
}
