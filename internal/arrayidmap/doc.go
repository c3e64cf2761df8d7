// Package arrayidmap implements the dense, single-level id map.
//
// The builder hands out contiguous mapped id ranges from an atomic counter
// and records the original id of every mapped id in a paged array. Build
// inverts that array into a sparse, paged forward array addressed by
// original id, so lookups in both directions are plain array reads.
//
// The forward array is sized by the highest original id. This makes the map
// cheap for compact id spaces and unsuitable for very sparse ones, which is
// what the two-level high-limit map is for.
package arrayidmap
