package ports

import "context"

// DocumentStore persists uploaded citizenship-document images.
type DocumentStore interface {
	// Upload stores body under key. Existing objects are never overwritten.
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	// PublicURL returns the retrievable reference for key.
	PublicURL(key string) string
}

// DateConverter converts YYYY/MM/DD dates between AD and BS. Both directions
// fail on malformed or unsupported input.
type DateConverter interface {
	ADToBS(ad string) (string, error)
	BSToAD(bs string) (string, error)
}
