// Package storage defines the key map repository contract. Triggers,
// actions and constraints are stored as opaque serialized blobs; the
// keymaps package owns their encoding.
package storage

import (
	"context"
	"time"
)

// KeyMapRecord is the stored form of a key map
type KeyMapRecord struct {
	UID         string
	Enabled     bool
	Trigger     []byte
	Actions     []byte
	Constraints []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Storage is the key map repository
type Storage interface {
	CreateKeyMap(ctx context.Context, record *KeyMapRecord) error
	GetKeyMap(ctx context.Context, uid string) (*KeyMapRecord, error)
	UpdateKeyMap(ctx context.Context, record *KeyMapRecord) error
	DeleteKeyMap(ctx context.Context, uid string) error
	ListKeyMaps(ctx context.Context) ([]*KeyMapRecord, error)

	Health() error
	Close() error
}
