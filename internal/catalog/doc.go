// Package catalog is the query side of choirbook.
//
// A [Service] reads normalized entries from a [Source], filters them for a requester with [Filter]
// and memoizes each (search, category, role) result in a [Cache] until the next invalidation.
// [Curator] wraps the write repositories so that every successful mutation invalidates the cache.
package catalog
