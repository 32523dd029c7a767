// Package cadence provides the Cadence music catalog API server.

// The server ranks songs for two requests: free-text search and
// history-based recommendation. The code is organized into subpackages:

// - internal/ranking: similarity, affinity profiles, scoring and result assembly
// - internal/discovery: loads catalog snapshots and history, then ranks them
// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/repository: Catalog, history, playlist and account storage
// - internal/auth: Registration, login and JWT validation
// - internal/storage: Song audio in S3
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (request ids, logging, metrics, tracing, rate limiting)
// - internal/cleanup: Background purge of deleted songs
// - internal/seed: Development data

// See the individual package documentation for detailed API reference.
package cadence
