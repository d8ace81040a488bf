// Package services defines the [Source] interface for catalog providers and implements it for files, HTTP and the
// catalog database.
//
// # Documents
//
// A catalog document is either a bare JSON array of song records or an object with a "songs" array.
// [DecodeDocument] accepts both. Records are decoded into [models.RawSong] with every field optional, so
// a document with malformed entries still decodes; validation happens when the catalog is built.
//
// # Sources
//
//   - [FileSource] : reads a document from disk
//   - [HTTPSource] : GETs a document, optionally replaying headers captured from a cURL command
//   - [DatabaseSource] : replays the stored catalog through the same path as imported documents
//
// [NewSource] chooses one from the [catalog] config table and [ParseSource] from a --source flag value.
//
// # Error Handling
//
// Sources use typed errors from shared package:
//   - [shared.ErrSourceUnavailable] : transport failure or non-2xx response
//   - [shared.ErrTimeout] : the fetch deadline passed
//   - [shared.ErrInvalidDocument] : the payload is not a catalog document
//   - [shared.ErrMissingConfig] : no source configured
package services
