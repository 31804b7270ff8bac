// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore
// for brick payloads.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("volumes/stack-0/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	reader := payload.NewReader(store)
//
// Or wrap an existing client:
//
//	store := s3.NewStore(client, "my-bucket", "volumes/")
//
// # Features
//
//   - One ranged GET per brick read
//   - Managed (multipart when large) uploads via feature/s3/manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
