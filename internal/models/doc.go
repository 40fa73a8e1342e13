// Package models defines domain entities and persistence interfaces for the choirbook catalog.
//
// The package contains two categories of types:
//
// 1. Read models: immutable values handed to the presentation layer
//   - [Entry] : A normalized song or hymn, tagged by [EntryKind] with a kind-specific [Lyrics] payload
//   - [Category] : A category as listed to readers, including the synthetic "all" category
//   - [Role] : The requester role that gates visibility
//
// 2. Persistent Entities: Database-backed rows written by curators
//   - [PersistedItem] : A raw catalog row (song or hymn) with inline hymn lyrics
//   - [ItemVersion] : A lyric version of an item, one of which may be flagged primary
//   - [PersistedCategory] : A stored category
//
// All persistent entities implement the Model interface providing IDs, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
