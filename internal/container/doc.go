// Package container implements paged int64 arrays for node id bookkeeping.
//
// All arrays split their index space into fixed pages so that billions of
// ids never require a single contiguous allocation. Dense arrays use pages
// of 65536 entries, sparse arrays pages of 4096 entries:
//
//   - LongArray: fixed size, fully allocated, plain reads and writes.
//   - GrowingLongArray: grows by whole pages under a mutex, lock-free
//     writes to already reserved indices.
//   - SparseLongArray: fixed capacity, pages allocated on first write,
//     unset entries read as a configured default value.
package container
