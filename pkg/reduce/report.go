package reduce

import (
	"time"

	"github.com/google/uuid"

	"github.com/ib-77/gridsum/pkg/partition"
)

// Degraded is a partition whose partial sum was replaced by zero.
type Degraded struct {
	Partition partition.Partition
	Err       error
}

// Report is the outcome of one successful reduction.
type Report struct {
	RunID      uuid.UUID
	Strategy   Strategy
	Workers    int
	Rows       int
	Total      float64
	Partitions []partition.Partition

	// Active is the number of partitions with at least one in-range row.
	Active int

	// Degraded is only ever non-empty for BoundedPipeline.
	Degraded []Degraded

	Elapsed time.Duration
}

// IsDegraded reports whether any partial was replaced by zero.
func (r Report) IsDegraded() bool {
	return len(r.Degraded) > 0
}
