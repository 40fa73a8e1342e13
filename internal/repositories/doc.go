// Package repositories implements SQLite persistence for the catalog.
//
// Each CRUD repository handles one table with atomic sequence generation for stable recency ordering.
// Deletes are hard deletes; retiring an item without losing it is done by deactivating it.
//
// Key Implementations:
//   - [CategoryRepository] : Category rows with case-insensitive unique names
//   - [ItemRepository] : Song and hymn rows, including activation state
//   - [VersionRepository] : Lyric versions of an item with a single primary flag
//   - [CatalogAdapter] : Read path that loads active items with their category and versions and normalizes them into [models.Entry] values
//
// Sequence numbers provide stable, human-readable ordering (higher is newer) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
