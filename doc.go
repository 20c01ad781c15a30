// Package bucketgate serves objects from an object storage bucket as web content.
//
// A bucketgate process runs several independent HTTP listeners (typically a
// public gateway and a management endpoint). Every listener resolves the request
// path to an object key, asks an ObjectStore for that key and turns the
// FetchOutcome into an HTTP response.
//
// # Key Components
//
//   - ObjectStore: capability that fetches a single keyed object from a bucket
//   - FetchOutcome: tagged lookup result (found, not found, transient error)
//   - ServerConfig: immutable per-listener configuration
//
// # Storage Backends
//
//   - s3store: S3 and S3-compatible services via aws-sdk-go-v2
//   - filesystem: local directory tree, one sub directory per bucket
//   - database/sqlite, database/postgres: objects stored as table rows
//
// # Example Usage
//
//	root, _ := os.OpenRoot("./data")
//	store := filesystem.NewStore(root)
//
//	outcome := store.GetObject(ctx, "site", "index.html")
//	resp := http.BuildObjectResponse(logger, outcome, "index.html", "")
//
// See the http package for response construction and routing, and the server
// package for running several listeners side by side.
package bucketgate
