// Package services implements the upstream catalog clients behind narrow,
// purpose-specific interfaces.
//
// # Provider Interfaces
//
// The three catalogs share no common schema, so each gets its own
// abstraction instead of a generic "catalog" type:
//
//   - [SimilarityProvider] : similar tracks, similar artists, top tracks,
//     and tag vocabularies (Last.fm)
//   - [IdentityResolver] : fuzzy (track, artist) canonicalization
//     (MusicBrainz)
//   - [Enricher] : preview audio, artwork, and storefront links (iTunes)
//
// # Response Normalization
//
// Last.fm returns either a single object or a list for "one vs many"
// results. Adapters normalize that union into plain slices at the JSON
// boundary; callers never see the raw shape.
//
// # Error Handling
//
// Adapters distinguish a failed call from an empty result. Wrapped
// sentinels from the shared package:
//   - [shared.ErrProviderRequest] : network failure or non-2xx status
//   - [shared.ErrProviderResponse] : malformed payload or a
//     provider-reported application error
//
// An empty slice with a nil error always means "nothing matched". Resolver
// operations are the exception: they are best-effort by contract and fall
// back to their inputs instead of returning errors.
//
// # Caching
//
// All adapters read and write through one injected [cache.Cache]. Keys are
// canonical sorted-parameter strings under per-provider namespaces
// ("lastfm:", "mb:<endpoint>:", "itunes:").
package services
