// Package tasks runs catalog operations that take long enough to need progress reporting.
//
// # Core Operations
//
//  1. [Importer.Import] : fetch a [services.Source], build the catalog, replace the stored catalog
//     - Malformed records are skipped and reported, never fatal
//     - Records repeating an earlier ID are skipped with [ErrDuplicateID]
//     - Each run is recorded through [ImportHistory] when one is configured
//
//  2. [BulkExport] : write one file per songbook with a worker pool
//     - Writes are paced with a [rate.Limiter]
//     - A JSON manifest lists every songbook with its file or error
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking, so a nil or full channel only drops updates.
package tasks
