// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("exports/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	w := export.NewWriter(store)
//
// # Features
//
//   - Range reads for partial fetches
//   - Conditional writes (If-None-Match) for write-once manifests
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
