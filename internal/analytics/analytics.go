package analytics

import (
	"time"

	"github.com/layerist/proxy-checker/internal/model"
)

// Compute aggregates summary stats for a finished batch.
func Compute(results []model.ProbeResult, totalDuration time.Duration) model.BatchStats {
	stats := model.BatchStats{
		TotalProxies:          len(results),
		TotalProcessingTimeMs: totalDuration.Milliseconds(),
	}

	seen := make(map[string]struct{})

	var latencySum int64
	var latencyCount int64

	for _, r := range results {
		seen[r.Proxy.Addr()] = struct{}{}

		if r.Alive {
			stats.AliveProxies++
			if r.LatencyMs > 0 {
				latencySum += r.LatencyMs
				latencyCount++
			}
		}
	}

	stats.UniqueProxies = len(seen)

	if latencyCount > 0 {
		stats.AvgLatencyMs = float64(latencySum) / float64(latencyCount)
	}
	if stats.TotalProxies > 0 {
		stats.SuccessRatePct = float64(stats.AliveProxies) / float64(stats.TotalProxies) * 100.0
	}

	return stats
}
