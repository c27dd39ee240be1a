package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/layerist/proxy-checker/internal/model"
)

// WriteProxyList writes the working proxies to path, one per line, in
// the same format they were read in (credentials preserved).
func WriteProxyList(path string, rep model.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range rep.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

// WriteResults writes all per-proxy results + summary stats to a file
// in json or csv format.
func WriteResults(path string, format string, results []model.ProbeResult, stats model.BatchStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "json":
		return writeJSON(f, results, stats)
	case "csv":
		return writeCSV(f, results)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// writeJSON writes an object with "results" and "summary".
func writeJSON(w io.Writer, results []model.ProbeResult, stats model.BatchStats) error {
	payload := struct {
		Results []model.ProbeResult `json:"results"`
		Summary model.BatchStats    `json:"summary"`
	}{
		Results: results,
		Summary: stats,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// writeCSV writes per-proxy rows (summary is not included in CSV).
func writeCSV(w io.Writer, results []model.ProbeResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"host",
		"port",
		"alive",
		"latency_ms",
		"status_code",
		"exit_ip",
		"country",
		"city",
		"isp",
		"reason",
		"error",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Proxy.Host,
			strconv.Itoa(r.Proxy.Port),
			boolToYN(r.Alive),
			strconv.FormatInt(r.LatencyMs, 10),
			strconv.Itoa(r.StatusCode),
			r.ExitIP,
			r.Country,
			r.City,
			r.ISP,
			string(r.Reason),
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// PrintResultsTable prints a human-readable table of per-proxy results.
func PrintResultsTable(w io.Writer, results []model.ProbeResult) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "PROXY\tALIVE\tLAT(ms)\tEXIT IP\tCOUNTRY\tREASON")

	for _, r := range results {
		alive := "no"
		if r.Alive {
			alive = "yes"
		}

		lat := "-"
		if r.LatencyMs > 0 {
			lat = strconv.FormatInt(r.LatencyMs, 10)
		}

		reason := dashIfEmpty(string(r.Reason))
		if r.Alive {
			reason = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Proxy.Addr(),
			alive,
			lat,
			dashIfEmpty(r.ExitIP),
			dashIfEmpty(r.Country),
			reason,
		)
	}

	tw.Flush()
}

// PrintSummary prints the aggregated batch stats.
func PrintSummary(w io.Writer, stats model.BatchStats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Total proxies:        %d\n", stats.TotalProxies)
	fmt.Fprintf(w, "  Unique proxies:       %d\n", stats.UniqueProxies)
	fmt.Fprintf(w, "  Working proxies:      %d\n", stats.AliveProxies)
	fmt.Fprintf(w, "  Success rate:         %.1f%%\n", stats.SuccessRatePct)
	fmt.Fprintf(w, "  Avg latency (alive):  %.1f ms\n", stats.AvgLatencyMs)
	fmt.Fprintf(w, "  Batch time:           %.2f s\n", float64(stats.TotalProcessingTimeMs)/1000.0)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func boolToYN(b bool) string {
	if b {
		return "y"
	}
	return "n"
}
