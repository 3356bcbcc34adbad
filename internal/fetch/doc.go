// Package fetch implements the module fetch-and-materialize pipeline.
//
// For every configured module the Resolver probes the packed archive first
// and falls back to the file manifest. Archives are stored as one blob and
// registered on the SearchPathRegistry; manifests fan out into one request per
// file whose bodies the Materializer writes below the install root. The
// Orchestrator runs all modules concurrently, waits for every outcome, and
// only then flushes the registry into the runtime, marks modules loaded and
// invalidates the runtime's import caches.
package fetch
