// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    func(o *s3.Options) {
//	        o.Prefix = "snapshots/"
//	        o.Region = "us-east-1"
//	    },
//	)
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Managed multipart uploads for large snapshots
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
