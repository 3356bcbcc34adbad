// Package vfs defines the hierarchical filesystem that fetched modules are
// materialized into. Paths are slash-separated and rooted at "/", mirroring
// the layout the scripting runtime imports from (site-packages plus archive
// blobs at the root). Two backends exist: an in-memory tree for dry runs and
// tests, and a disk tree rooted at StoragePath for runtimes that execute on
// the host. Writes go through a temp file + rename and are serialized per
// path, so concurrent module loaders never observe partial files.
package vfs
