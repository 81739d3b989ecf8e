// Package badger provides BadgerDB-backed implementations of the storage
// interfaces for embedded, single-process deployments.
//
// All record keys embed the owning tenant's ID, so every scan and lookup
// is structurally tenant-scoped. Similarity search is a brute-force
// cosine scan over the tenant's chunks; text relevance is TF-IDF over
// the same scan. Counters and session history use badger's entry TTL
// for self-cleaning buckets.
package badger
