// Package server exposes the song catalog as a read-only JSON API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] added first runs first. The [BasicRouter] wraps its whole [http.ServeMux] in the middleware chain
// and registers method-qualified patterns, so a wrong method answers 405 with an Allow header.
//
// # Endpoints
//
//	GET /health                       status and song count
//	GET /songs                        filtered, sorted list (language, capo, range, songbook, q, sort, order)
//	GET /songs/{id}                   one song, optionally ?transpose=n
//	GET /stats                        catalog aggregate
//	GET /keys                         the twelve keys in semitone order
//	GET /keys/transpose?key=&n=       key arithmetic
//	GET /keys/distance?from=&to=      upward semitone distance
//
// Invalid query parameters answer 400 with a JSON body of the form {"error": "..."}.
//
// # Rate Limiting
//
// When [shared.ServerConfig] sets a rate, a single token bucket guards the whole server and requests over budget
// receive 429 with a Retry-After header.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
