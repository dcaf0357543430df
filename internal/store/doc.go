// Package store provides SQLite-backed storage for sample runs.
//
// Each run records the design it was drawn from (a config hash), its
// seed, size and prescribed weights, population counts at selection time,
// and the selected unit identifiers. Runs are append-only:
//
//   - Identity: run IDs are UUIDv7; writing the same ID twice is a no-op
//   - Ordering: seq is a logical clock assigned on write, and every
//     listing uses ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Reproducibility: the selection hash lets two runs of the same
//     design and seed be compared without reading their units
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Hashes are computed by internal/fingerprint.
package store
