// Package conv provides checked integer arithmetic and conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow
// when reserving id ranges or converting between int and int64.
//
// Use cases:
//   - Advancing shared id counters by caller-supplied batch lengths
//   - Sizing paged arrays from 64-bit node counts
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
