// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface so the sync report
// archive works against AWS S3 or a self-hosted MinIO instance and can be
// mocked in tests (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket, combined by EnsureBucket
//   - PutObject: uploads a report
//   - GetObject: retrieves a report as a stream
//   - ListObjects: lists reports under a prefix
//   - RemoveObject: prunes reports past the retention limit
//
// IsNotFound classifies MinIO error responses for missing keys and buckets.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
