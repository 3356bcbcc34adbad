// Package manifest builds the artefacts a module server publishes next to a
// module's sources: the files.json listing and the files.zip archive. It also
// watches a source tree and regenerates the listing when files come and go.
package manifest
