// Package highlimit implements the two-level id map.
//
// Original ids are first translated into a dense intermediate id space by a
// sharded map in override mode, then into the internal id space by an
// independently chosen inner builder:
//
//	original --(sharded, override)--> intermediate --(inner)--> internal
//
// The inner builder never sees original ids. Every BulkAdder.Insert runs two
// phases over the same slice: the intermediate batch overwrites the original
// ids with intermediate ids, then the inner allocator consumes the rewritten
// slice. After phase one the slice must be treated as intermediate ids only.
//
// Type ids are "highlimit-" followed by the inner map's type id.
package highlimit
