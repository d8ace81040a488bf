// Package models defines the song records shared by every layer of the songbook catalog.
//
// The package contains two categories of types:
//
// 1. Catalog records: immutable values built once per raw input
//   - [RawSong] : A deserialized catalog entry where every field is optional
//   - [Song] : The normalized record (title, artist, key, capo, range, songbooks, ...)
//   - [DateAdded] : Month and year a song joined the catalog
//
// 2. Persistent entities: database-backed wrappers with lifecycle metadata
//   - [PersistedSong] : A stored song with sequence, timestamps and soft delete
//   - [ImportRun] : One catalog import with its source, counts and completion time
//
// [NewSong] validates the required fields (title, artist, key) and reports failures as a [MalformedSongError].
// [BuildCatalog] applies it to a whole document with partial-failure semantics: malformed entries are
// collected as [RecordError] values while the rest of the catalog is still returned.
//
// The Repository[T] interface defines standard CRUD operations for database access.
package models
