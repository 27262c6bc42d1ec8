package commands

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/crossfilter/blobstore"
	miniostore "github.com/hupe1980/crossfilter/blobstore/minio"
	s3store "github.com/hupe1980/crossfilter/blobstore/s3"
	"github.com/hupe1980/crossfilter/config"
)

// openStore opens the blob store of cfg, wrapped in a read cache when
// cfg.CacheBytes is positive.
func openStore(ctx context.Context, cfg config.Export) (blobstore.BlobStore, error) {
	var (
		store blobstore.BlobStore
		err   error
	)

	switch cfg.Backend {
	case "memory":
		store = blobstore.NewMemoryStore()
	case "local":
		store = blobstore.NewLocalStore(cfg.Path)
	case "minio":
		store, err = openMinio(cfg)
	case "s3":
		opts := []s3store.Option{s3store.WithPrefix(cfg.Prefix)}
		if cfg.Region != "" {
			opts = append(opts, s3store.WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(cfg.Endpoint))
		}
		store, err = s3store.New(ctx, cfg.Bucket, opts...)
	default:
		return nil, fmt.Errorf("export backend %q is not supported", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	if cfg.CacheBytes > 0 {
		store = blobstore.NewCachingStore(store, cfg.CacheBytes)
	}
	return store, nil
}

func openMinio(cfg config.Export) (blobstore.BlobStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio needs export.endpoint and export.bucket")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return miniostore.NewStore(client, cfg.Bucket, cfg.Prefix), nil
}
