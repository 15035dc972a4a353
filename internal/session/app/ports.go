package app

import "context"

// CredentialStore is the persisted key-value storage behind the
// session. Get returns ("", nil) for an absent key; absence is not
// an error here, the store decides what missing data means.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
