// Package store keeps the client-side copy of every backend collection.
//
// Each registered collection holds the full list fetched from the API and
// the page the user is viewing. Collections are replaced wholesale on every
// fetch; there is no incremental patching and nothing is persisted.
// Subscribers registered for a key are invoked (outside the store lock)
// whenever its items or page change, which is how tables and charts re-render.
//
// Refreshes are not sequenced: when two refreshes of one key overlap, the
// one that finishes last wins.
package store
