// Package services regroupe les adaptateurs vers les prestataires externes :
// stockage d'images, Stripe et Razorpay.
package services

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"dermodazzle_back_end/internal/catalog"
)

// ImageStore dépose les images produits dans un bucket MinIO.
type ImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string // ex. https://cdn.example.com/products ; vide → URL signée
}

func NewImageStore(client *minio.Client, bucket, publicURL string) *ImageStore {
	return &ImageStore{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// objectKey génère un nom unique en conservant l'extension d'origine.
func objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return "products/" + uuid.NewString() + ext
}

func (s *ImageStore) Upload(ctx context.Context, img catalog.Image) (string, error) {
	key := objectKey(img.Filename)
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, img.Body, img.Size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", img.Filename, err)
	}
	log.Printf("🖼️ Image déposée: %s/%s", s.bucket, key)

	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}
	return s.SignedURL(ctx, key, MaxSignedURLDuration)
}
