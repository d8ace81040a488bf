// Package catalog derives summaries from, and answers queries over, a collection of [models.Song] records.
//
// # Aggregation
//
// [Compute] produces an [Aggregate] in one pass: the union of songbooks, a language to count mapping (songs without a
// language are not counted) and the widest known vocal range. An empty catalog, or one where no song has range data,
// reports a nil MaxRangeSemitones rather than zero.
//
// # Filtering
//
// [Filter] applies a [FilterSpec] and keeps input order. Criteria are ANDed:
//   - Language: exact tag match unless [All]
//   - Range: the song's range must fit inside the window (containment, not overlap); songs without a range never match
//   - CapoRequired: only songs with capo > 0
//   - Songbook: membership unless [All]
//   - Query: fuzzy match on "title artist"
//
// # Sorting
//
// [Sort] is stable and never mutates its input. Titles and artists compare by byte order, dates by year then month,
// ranges by size with unknown ranges ordered lowest.
//
// # Catalog
//
// [Catalog] owns the current collection for long-lived callers (server, TUI). It caches the aggregate and recomputes it
// whenever the collection is replaced.
package catalog
