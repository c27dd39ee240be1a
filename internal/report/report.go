package report

import (
	"sort"

	"github.com/layerist/proxy-checker/internal/model"
)

// Build assembles the final report from a batch of probe results.
// Results arrive in completion order; Build restores input order via
// each result's index and keeps only the working proxies. An empty
// report is valid output.
func Build(results []model.ProbeResult) model.Report {
	sorted := make([]model.ProbeResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})

	var rep model.Report
	for _, r := range sorted {
		if r.Alive {
			rep.Working = append(rep.Working, r.Proxy)
		}
	}
	return rep
}
