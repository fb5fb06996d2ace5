package services

import (
	"context"
	"net/url"
	"time"
)

// Durée maximale acceptée par S3 pour une URL signée.
const MaxSignedURLDuration = 7 * 24 * time.Hour

// SignedURL génère une URL de lecture temporaire pour un objet du bucket.
func (s *ImageStore) SignedURL(ctx context.Context, key string, duration time.Duration) (string, error) {
	if duration > MaxSignedURLDuration {
		duration = MaxSignedURLDuration
	}
	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, key, duration, make(url.Values))
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}
