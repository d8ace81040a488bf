// Package repositories implements SQLite persistence for the song catalog.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Songs support soft deletes via deleted_at timestamps and deleted rows are excluded from queries by default.
//
// Key Implementations:
//   - [SongRepository] : Song persistence with songbook membership and whole-catalog replacement
//   - [ImportRepository] : Import history with start and completion tracking
//
// Sequence numbers provide stable ordering (catalog order for songs) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
