// Package storage keeps uploaded receipt images.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/coney-counter/coney-counter-api/internal/config"
	"github.com/google/uuid"
)

type Store interface {
	// Put stores data under key and returns a URL the front end can load.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// New picks the store configured by STORAGE_PROVIDER.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageProvider)) {
	case "", config.StorageProviderLocal:
		return NewLocalStore(cfg.StorageLocalDir, "/uploads")
	case config.StorageProviderGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSON)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.StorageProvider)
	}
}

// ReceiptKey builds a unique object key for a user's receipt image.
func ReceiptKey(userID uint, ext string) string {
	if ext == "" {
		ext = ".jpg"
	}
	return path.Join("receipts", fmt.Sprintf("%d", userID), uuid.NewString()+ext)
}
