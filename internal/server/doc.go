// Package server hosts the Fiber development server that publishes module
// trees the way a production CDN would: raw source files, a files.json
// listing per module and, on request, a files.zip archive. Missing listings
// and archives are built on the fly and kept in a short-lived LRU cache so
// edits show up without restarting. Diagnostics live under /-/ and are
// registered by the routes subpackage.
package server
