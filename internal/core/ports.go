package core

import (
	"context"
)

// DraftProvider defines the interface to the external drafting collaborator.
// A nil draft with a nil error means the provider declined to draft; the
// pipeline must treat that the same as "no draft available".
type DraftProvider interface {
	// DraftReply produces a reply draft for a triaged message
	DraftReply(ctx context.Context, record *EmailRecord, classification ClassificationResult) (*Draft, error)
}

// CacheRepository defines the interface for the advisory sender cache
type CacheRepository interface {
	// Get retrieves a cached entry for a sender
	Get(ctx context.Context, sender string) (*SenderCacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *SenderCacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, sender string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
