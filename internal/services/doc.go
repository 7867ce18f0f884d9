// Package services talks to music providers.
//
// # Interfaces
//
// [SongSearcher] finds songs whose titles contain a term; the playlist builder depends only on it.
// [PlaylistPublisher] saves a finished playlist. [Service] combines both.
//
// # Spotify Implementation
//
// [SpotifyService] searches with an app token from the OAuth2 client credentials flow, cached until
// it expires. Requests go through a resty client with retries on 429 and 5xx responses.
//
// Title matching is whole-word and case-insensitive, so a search for "Ann" keeps "Ann's Song"
// but drops "Anna". Characteristics are applied client side:
//   - clean: explicit tracks are dropped
//   - popular: ordered by popularity, highest first
//   - obscure: ordered by popularity, lowest first
//
// Publishing needs a user access token; the playlist is created private.
//
// # Caching
//
// [CachedSearcher] decorates any SongSearcher with a [cache.Cache] keyed by [SearchKey].
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrMissingCredentials] : client id or secret not configured
//   - [shared.ErrAuthFailed] : token request or API call rejected
//   - [shared.ErrNotAuthenticated] : publishing without a user token
//   - [shared.ErrServiceUnavailable] : rate limited or backend down
//   - [shared.ErrAPIRequest] : any other failed request
package services
