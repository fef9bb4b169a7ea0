package blobstore

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/deliverypulse/pulse/internal/contract"
	"google.golang.org/api/option"
)

// newGCSClient creates a GCS client using Application Default Credentials.
// A configured endpoint (such as a local emulator) skips authentication.
func newGCSClient(ctx context.Context, cfg contract.BlobConfig) (*gcs.Client, error) {
	var opts []option.ClientOption
	if cfg.GCSEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.GCSEndpoint), option.WithoutAuthentication())
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return client, nil
}

func putGCS(ctx context.Context, client *gcs.Client, loc Location, data []byte) error {
	w := client.Bucket(loc.Bucket).Object(loc.Key).NewWriter(ctx)
	w.ContentType = ContentType(loc.Key)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write %s/%s: %w", loc.Bucket, loc.Key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s/%s: %w", loc.Bucket, loc.Key, err)
	}
	return nil
}

func getGCS(ctx context.Context, client *gcs.Client, loc Location) ([]byte, error) {
	r, err := client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s/%s: %w", loc.Bucket, loc.Key, err)
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}
