// Package server exposes playlist building over HTTP.
//
// # Routes
//
//	GET  /health               liveness
//	POST /api/playlists        build a playlist; body is a PlaylistPreferences document,
//	                           an empty body uses the stored preferences. ?publish=true
//	                           also saves it to the configured service.
//	GET  /api/playlists        archived playlists, newest first (?limit=N)
//	GET  /api/playlists/{id}   one archived playlist with its entries
//	GET  /api/contacts         contacts (?filtered=true for the saved selection)
//	GET  /metrics              Prometheus exposition, when metrics are enabled
//
// # Errors
//
// Errors are JSON objects with "error" and "code" fields. A build that finds no
// contacts or too few songs returns 422; one that hits too many backend errors
// returns 502; malformed preferences return 400.
//
// # Router
//
// [BasicRouter] registers "METHOD /path" patterns on an [http.ServeMux] and wraps
// each route in the [Middleware] stack. Handlers that own several routes implement
// [Handler] and list their patterns from Routes.
package server
