package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"insurance-ledger/internal/database/minio"
)

// DocumentService stores provider-uploaded product documents and derives the
// content hash that proposals and products carry.
type DocumentService struct {
	storage *minio.Client
}

func NewDocumentService(storage *minio.Client) *DocumentService {
	return &DocumentService{storage: storage}
}

// StoreProductDocument stores the document and returns its sha256 hex hash.
// The hash doubles as the object name, deduplicating identical uploads.
func (s *DocumentService) StoreProductDocument(ctx context.Context, contentType string, data []byte) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("document storage is not configured")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("product document is empty")
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	size, err := s.storage.PutObject(ctx, minio.ProductDocumentBucket, hash, contentType, data)
	if err != nil {
		return "", fmt.Errorf("failed to store product document: %w", err)
	}

	slog.Info("product document stored", "hash", hash, "size", size)
	return hash, nil
}
