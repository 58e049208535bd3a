// services/spaces.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SpacesService stores uploaded media on an S3-compatible object store and
// hands back a reference the rest of the system persists.
type SpacesService struct {
	client     *s3.Client
	bucket     string
	region     string
	RewardRoot string
}

func NewSpacesService(spacesKey, spacesSecret, region, bucket, rewardRoot string) *SpacesService {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		panic(fmt.Sprintf("Unable to load Spaces config: %v", err))
	}

	client := s3.NewFromConfig(cfg)

	return &SpacesService{
		client:     client,
		bucket:     bucket,
		region:     region,
		RewardRoot: strings.TrimPrefix(rewardRoot, "/"),
	}
}

// PutObject stores data under key and returns the public URL used as the
// media reference.
func (s *SpacesService) PutObject(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	fullKey := key
	if s.RewardRoot != "" {
		fullKey = s.RewardRoot + "/" + key
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &fullKey,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
		ACL:         "public-read",
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object %s: %w", fullKey, err)
	}

	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, fullKey), nil
}
