// Package vfs provides an in-memory, write-back virtual filesystem exposing
// a POSIX-like hierarchical namespace of files, directories, and symbolic
// links over a pluggable persistent backend.
//
// Operations run against a cached shadow tree and are serialized by the
// filesystem; pending mutations are batched and flushed to the backend as a
// single bulk transaction after a bounded idle period, after a bounded
// staleness since the last flush, or on explicit request.
package vfs
