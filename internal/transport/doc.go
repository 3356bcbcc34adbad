// Package transport performs the single-attempt GET requests the fetch
// orchestrator issues for archives, manifests and per-file resources. A
// Fetcher returns the status and body of one resource; HTTP, S3 and local
// file sources are dispatched by URL scheme through Mux. Non-2xx answers are
// responses, not errors: errors are reserved for transport failures.
package transport
