// Package blobstore provides the storage abstraction for exported dataset
// snapshots.
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and short-lived exports
//   - LocalStore: local filesystem with atomic writes
//   - CachingStore: read-through cache in front of a remote store
//   - minio.Store: MinIO and S3-compatible storage
//   - s3.Store: Amazon S3 with range reads and conditional writes
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Stores that can create a blob atomically only when it is absent should also
// implement ConditionalPutter.
package blobstore
