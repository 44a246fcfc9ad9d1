// Package reduce sums a grid in parallel.
//
// The grid is split into one contiguous row range per worker (see package
// partition); every range is summed by its own worker unit and the partial
// sums are added into a total. Three strategies are offered side by side:
//
//   - ExplicitThread: one task per partition in a bounded task group, a join
//     barrier, then an in-order fold. Any failed or cancelled unit aborts the
//     reduction with ErrExecutionAborted. Totals are bitwise reproducible.
//   - BoundedPipeline: partitions are generated lazily onto a rail; each unit
//     is started and joined before the next one starts (depth 1 by default).
//     A failed unit contributes zero and is listed in Report.Degraded.
//   - FullyParallel: an unordered parallel map followed by an associative
//     reduction. Any failure is fatal.
//
// Invalid input (nil grid, non-positive worker count) is rejected with
// ErrInvalidArgument before any goroutine starts.
package reduce
