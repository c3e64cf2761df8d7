// Package labels tracks which node labels each node carries.
//
// Loaders record labels with a Builder while ids are being inserted, keyed by
// whatever id the loader holds at that moment (original ids for single-level
// maps, intermediate ids for two-level maps). The id map translates those ids
// into its own mapped id space when it is built, producing an Information
// value backed by one roaring64 bitmap per label.
//
// A graph without any recorded label uses the implicit AllNodes label.
package labels
