// Package minio provides a BlobStore for brick payloads on MinIO and
// other S3-compatible services (Ceph, Garage, SeaweedFS).
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "volumes", "stack-0/")
//	reader := payload.NewReader(store)
//
// Each brick read is a single ranged GET, so a pack file holding many
// bricks is cheap to stream from.
package minio
