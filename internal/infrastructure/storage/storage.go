// Package storage provides object storage implementations for auction
// media (images, ownership certificates) and payment screenshots.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ObjectStorage abstracts the S3-compatible backend that holds uploaded
// files. Handlers never stream file bytes through the API server; clients
// upload against presigned URLs and submit the resulting storage keys.
type ObjectStorage interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// AuctionImageKey builds the storage key for an auction image
func AuctionImageKey(auctionID uuid.UUID, filename string) string {
	return fmt.Sprintf("auctions/%s/images/%s-%s", auctionID, uuid.New().String()[:8], filename)
}

// AuctionCertificateKey builds the storage key for an ownership certificate
func AuctionCertificateKey(auctionID uuid.UUID, filename string) string {
	return fmt.Sprintf("auctions/%s/certificates/%s-%s", auctionID, uuid.New().String()[:8], filename)
}

// PaymentScreenshotKey builds the storage key for a payment proof screenshot
func PaymentScreenshotKey(userID uuid.UUID, filename string) string {
	return fmt.Sprintf("payments/%s/%s-%s", userID, uuid.New().String()[:8], filename)
}
