// Package loader moves features from an open source into a warehouse table.
// Spatial layers go through bulk load jobs fed by a temporary interchange
// file, relational rows go through streaming inserts. Every finished run
// leaves one row in the job ledger.
package loader

import (
	"github.com/bluecarto/geoloader/internal/pkg/log"
)

// DailyJobQuotaPerTable is the warehouse quota on load jobs per table per day.
const DailyJobQuotaPerTable = 1500

// OptimumJobSize returns the smallest job size that keeps a full load of
// featureCount features within the daily per-table job quota, at least 1.
func OptimumJobSize(featureCount int) int {
	size := ceilDiv(featureCount, DailyJobQuotaPerTable)
	if size < 1 {
		return 1
	}
	return size
}

// ResolveJobSize picks the job size for a run. A non-positive requested size
// means no preference. A requested size below the optimum would exceed the
// daily quota and is overridden.
func ResolveJobSize(logger log.Logger, requested, featureCount int) int {
	optimum := OptimumJobSize(featureCount)
	if requested <= 0 {
		return optimum
	}
	if requested < optimum {
		logger.Warnf(`job size %d would exceed the daily load jobs per table quota, using the optimum size %d`, requested, optimum)
		return optimum
	}
	return requested
}

// JobCount returns the number of full or partial jobs needed to load the
// features from startAt on, invalid features are not accounted for.
func JobCount(featureCount, startAt, jobSize int) int {
	return ceilDiv(featureCount-startAt, jobSize)
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
