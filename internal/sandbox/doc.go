// Package sandbox is an in-memory stand-in for the hospital REST backend.
//
// It serves the same /api surface as the real backend (collections, detail,
// create, update, delete, picker lists, CSV export, reports, and health) from
// seeded synthetic data, so the dashboard can be demoed and the client can be
// tested end to end without a database.
package sandbox
