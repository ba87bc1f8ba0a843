// Package cache provides a generic TTL + LRU cache for fetched listing
// data.
//
// Keys are arbitrary values: strings are used as-is, anything else is
// canonicalized to JSON and SHA-256 hashed, so structurally equal inputs
// share an entry. Expiry is lazy, eviction is least-recently-used, and an
// optional best-effort disk mirror persists entries as one JSON file each
// across restarts. Loader adds single-flight loading on top.
package cache
