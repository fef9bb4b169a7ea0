// Package blobstore reads and writes whole objects on the local filesystem,
// S3 or Google Cloud Storage, chosen by URI scheme.
package blobstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/deliverypulse/pulse/internal/contract"
)

// Supported URI schemes. An empty scheme is a local path.
const (
	SchemeFile = "file"
	SchemeS3   = "s3"
	SchemeGCS  = "gs"
)

// Location is a parsed object URI.
type Location struct {
	Scheme string
	Bucket string
	Key    string // object key, or the local path for file locations
}

// ParseURI splits a path or URI into its scheme, bucket and key.
func ParseURI(uri string) (Location, error) {
	if uri == "" {
		return Location{}, fmt.Errorf("empty path")
	}
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return Location{Scheme: SchemeFile, Key: uri}, nil
	}
	switch strings.ToLower(scheme) {
	case SchemeFile:
		u, err := url.Parse(uri)
		if err != nil {
			return Location{}, fmt.Errorf("invalid file URI %q: %w", uri, err)
		}
		return Location{Scheme: SchemeFile, Key: filepath.FromSlash(u.Host + u.Path)}, nil
	case SchemeS3, SchemeGCS:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("invalid object URI %q: expected %s://bucket/key", uri, scheme)
		}
		return Location{Scheme: strings.ToLower(scheme), Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("unsupported URI scheme %q in %q", scheme, uri)
	}
}

// Store dispatches reads and writes by URI scheme. Cloud clients are
// created on first use.
type Store struct {
	cfg contract.BlobConfig

	mu  sync.Mutex
	s3  *s3.Client
	gcs *gcs.Client
}

var _ contract.BlobStore = &Store{} // Compile-time check

// New returns a Store using the given cloud settings.
func New(cfg contract.BlobConfig) *Store {
	return &Store{cfg: cfg}
}

// Read returns the full contents of the object at uri.
func (s *Store) Read(ctx context.Context, uri string) ([]byte, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	switch loc.Scheme {
	case SchemeS3:
		client, err := s.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		return getS3(ctx, client, loc)
	case SchemeGCS:
		client, err := s.gcsClient(ctx)
		if err != nil {
			return nil, err
		}
		return getGCS(ctx, client, loc)
	default:
		data, err := os.ReadFile(loc.Key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", loc.Key, err)
		}
		return data, nil
	}
}

// Write stores data as the complete object at uri, replacing any existing one.
func (s *Store) Write(ctx context.Context, uri string, data []byte) error {
	loc, err := ParseURI(uri)
	if err != nil {
		return err
	}
	switch loc.Scheme {
	case SchemeS3:
		client, err := s.s3Client(ctx)
		if err != nil {
			return err
		}
		return putS3(ctx, client, loc, data)
	case SchemeGCS:
		client, err := s.gcsClient(ctx)
		if err != nil {
			return err
		}
		return putGCS(ctx, client, loc, data)
	default:
		if dir := filepath.Dir(loc.Key); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}
		}
		if err := os.WriteFile(loc.Key, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", loc.Key, err)
		}
		return nil
	}
}

// Close releases any cloud clients.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gcs != nil {
		err := s.gcs.Close()
		s.gcs = nil
		return err
	}
	return nil
}

func (s *Store) s3Client(ctx context.Context) (*s3.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.s3 == nil {
		client, err := newS3Client(ctx, s.cfg)
		if err != nil {
			return nil, err
		}
		s.s3 = client
	}
	return s.s3, nil
}

func (s *Store) gcsClient(ctx context.Context) (*gcs.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gcs == nil {
		client, err := newGCSClient(ctx, s.cfg)
		if err != nil {
			return nil, err
		}
		s.gcs = client
	}
	return s.gcs, nil
}

// ContentType guesses a content type from the object key.
func ContentType(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".md":
		return "text/markdown"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".parquet":
		return "application/vnd.apache.parquet"
	default:
		return "text/plain"
	}
}
