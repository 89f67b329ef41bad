package receipt

import (
	"bytes"
	"context"
	"fmt"

	"better-being/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3API is the subset of the S3 client used by the receipt store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Store implements Store on AWS S3.
type s3Store struct {
	client S3API
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Store creates a receipt store that writes to bucket under prefix.
func NewS3Store(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 receipt store initialised")

	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// NewS3StoreWithClient wraps an existing S3 client.
func NewS3StoreWithClient(client S3API, bucket, prefix string, logger zerolog.Logger) Store {
	return &s3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With().Str("component", "receipt-s3-store").Logger(),
	}
}

// Save uploads the gzipped receipt.
func (s *s3Store) Save(ctx context.Context, order *model.Order) (string, error) {
	data, err := Encode(New(order))
	if err != nil {
		return "", err
	}

	key := s.prefix + Key(order.OrderNumber)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(data),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to put receipt to S3")
		return "", fmt.Errorf("failed to put receipt to S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("key", key).
		Msg("receipt uploaded")

	return "s3://" + s.bucket + "/" + key, nil
}

// fallbackStore tries the primary store first and falls back to the secondary.
type fallbackStore struct {
	primary   Store
	secondary Store
	logger    zerolog.Logger
}

// NewFallbackStore creates a store that writes to primary and, when that
// fails or primary is nil, to secondary.
func NewFallbackStore(primary, secondary Store, logger zerolog.Logger) Store {
	return &fallbackStore{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "receipt-fallback-store").Logger(),
	}
}

func (s *fallbackStore) Save(ctx context.Context, order *model.Order) (string, error) {
	if s.primary != nil {
		location, err := s.primary.Save(ctx, order)
		if err == nil {
			return location, nil
		}

		s.logger.Warn().
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("primary receipt store failed, falling back")
	}

	return s.secondary.Save(ctx, order)
}
