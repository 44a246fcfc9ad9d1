package types

// MetricsCollector records reduction metrics.
//
// Implementations must be safe for concurrent use and must not block.
type MetricsCollector interface {
	// RecordReduction records one finished Reduce call.
	//
	// Parameters:
	//   - strategy: Strategy name ("explicit-thread", "bounded-pipeline", "fully-parallel")
	//   - success: false when the call returned an error
	//   - duration: Wall time in seconds
	RecordReduction(strategy string, success bool, duration float64)

	// RecordPartitions records how many partitions a reduction used and how
	// many of them had at least one in-range row.
	RecordPartitions(strategy string, total, active int)

	// IncrementDegradedPartial counts a partition whose partial sum was
	// replaced by zero.
	IncrementDegradedPartial(strategy string)

	// RecordCounterTick counts one background counter tick.
	RecordCounterTick()
}
