// Package server exposes the catalog over HTTP as JSON.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /api/entries/{id}").
//
// # Requester Role
//
// Identity lives outside choirbook. The gateway in front of the server authenticates the user and
// forwards the resolved role in the X-Choirbook-Role header. [RequesterRole] parses it into the
// request context and handlers pass it explicitly to the catalog. A missing header means an
// unauthenticated requester.
//
// # Routes
//
//	GET  /api/categories          category listing, "all" first
//	GET  /api/entries?q=&category= filtered entries for the requester
//	GET  /api/entries/{id}        one entry, 404 when hidden from the requester
//	POST /api/cache/invalidate    drop memoized listings (curators only)
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
