// Package localstore keeps the per-browser key-value storage of hikayat.
//
// Every browser profile owns a private namespace of string keys holding JSON
// documents, the server-side counterpart of window.localStorage. Values are
// opaque to the store; repositories decide how to decode them.
package localstore

import (
	"context"

	"hikayat/internal/models"
)

// Local is the key-value surface of a single profile.
type Local interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(ctx context.Context, key string) ([]byte, bool, error)

	// SetItem creates or overwrites the value of key.
	SetItem(ctx context.Context, key string, value []byte) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// Committer is implemented by the transactional view passed to Atomic.
// Functions registered with AfterCommit run once the transaction is committed
// and are dropped when it is rolled back.
type Committer interface {
	AfterCommit(fn func())
}

// Profile is a Local bound to one profile id.
type Profile interface {
	Local

	ID() string

	// Atomic runs fn against a transactional view of the profile.
	// Writes made through tx become visible together when fn returns nil
	// and are discarded when it returns an error.
	Atomic(ctx context.Context, fn func(tx Local) error) error
}

type Store interface {
	Profile(id string) Profile
	Stats(ctx context.Context) (models.StorageStats, error)
	Close() error
}
