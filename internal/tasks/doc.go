// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Operations
//
//  1. [Importer.Import] : load a TOML seed file into the catalog
//     - Creates missing categories (matched by name, case-insensitively)
//     - Inserts entries and their lyric versions
//     - Collects per-entry failures instead of aborting
//     - Invalidates the catalog cache once at the end
//
//  2. [Exporter.ExportCategories] : write one file per category
//     - Lists each category for a given role through the catalog service
//     - Renders text, Markdown or CSV with the formatter package
//     - Runs a bounded number of workers
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
