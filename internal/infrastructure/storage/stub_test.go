package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage(t *testing.T) {
	ctx := context.Background()
	stub := NewStubObjectStorage()

	t.Run("upload url", func(t *testing.T) {
		url, expiresAt, err := stub.GenerateUploadURL(ctx, "auctions/a1/images/watch.jpg", "image/jpeg", time.Minute)
		require.NoError(t, err)
		assert.Contains(t, url, "/upload/auctions/a1/images/watch.jpg")
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("download url", func(t *testing.T) {
		url, _, err := stub.GenerateDownloadURL(ctx, "payments/u1/proof.png", time.Minute)
		require.NoError(t, err)
		assert.Contains(t, url, "/download/payments/u1/proof.png")
	})

	t.Run("empty key rejected", func(t *testing.T) {
		_, _, err := stub.GenerateUploadURL(ctx, "", "image/jpeg", time.Minute)
		require.Error(t, err)

		require.Error(t, stub.DeleteObject(ctx, ""))
	})

	t.Run("objects always exist", func(t *testing.T) {
		exists, err := stub.ObjectExists(ctx, "anything")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestStorageKeys(t *testing.T) {
	auctionID := uuid.New()
	userID := uuid.New()

	imageKey := AuctionImageKey(auctionID, "watch.jpg")
	assert.True(t, strings.HasPrefix(imageKey, "auctions/"+auctionID.String()+"/images/"))
	assert.True(t, strings.HasSuffix(imageKey, "-watch.jpg"))

	certKey := AuctionCertificateKey(auctionID, "deed.pdf")
	assert.Contains(t, certKey, "/certificates/")

	proofKey := PaymentScreenshotKey(userID, "proof.png")
	assert.True(t, strings.HasPrefix(proofKey, "payments/"+userID.String()+"/"))

	// Keys embed a random component so repeated uploads never collide
	assert.NotEqual(t, AuctionImageKey(auctionID, "watch.jpg"), AuctionImageKey(auctionID, "watch.jpg"))
}
