// Package osd defines the shared contracts for a striped object-storage
// device's on-disk object layout: domain types (file ids, object numbers,
// versions, timestamps, checksums), the collaborator interfaces consumed by
// the concrete implementation (StripingPolicy, ChecksumAlgorithmFactory,
// BufferPool, CowPolicy, VersionManager), error codes, logging setup, and
// retry/failover classification shared by lower layers.
//
// The filesystem-backed implementation of these contracts lives in the
// sibling fs package.
package osd
