package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/layerist/proxy-checker/internal/analytics"
	"github.com/layerist/proxy-checker/internal/checker"
	"github.com/layerist/proxy-checker/internal/config"
	"github.com/layerist/proxy-checker/internal/geoip"
	"github.com/layerist/proxy-checker/internal/logging"
	"github.com/layerist/proxy-checker/internal/model"
	"github.com/layerist/proxy-checker/internal/output"
	"github.com/layerist/proxy-checker/internal/parser"
	"github.com/layerist/proxy-checker/internal/prober"
	"github.com/layerist/proxy-checker/internal/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	defaults := config.Default()

	var flags model.Config
	configPath := flag.String("config", "", "optional YAML config file")
	flag.StringVar(&flags.ProxyType, "type", defaults.ProxyType, "proxy type: http | socks5")
	flag.Float64Var(&flags.TimeoutSeconds, "timeout", defaults.TimeoutSeconds, "timeout in seconds for each proxy check")
	flag.IntVar(&flags.Concurrency, "concurrency", defaults.Concurrency, "number of concurrent workers")
	flag.IntVar(&flags.Retries, "retries", defaults.Retries, "attempts per proxy (min 1)")
	flag.StringVar(&flags.TargetURL, "target", defaults.TargetURL, "URL to test proxies against")
	flag.Float64Var(&flags.RateLimit, "rate", 0, "max probe dispatches per second (0 = unlimited)")
	flag.StringVar(&flags.GeoIPPath, "geoip", "", "optional GeoIP2 .mmdb for exit IP annotation")
	flag.StringVar(&flags.ResultsFile, "results", "", "optional path to write full per-proxy results")
	flag.StringVar(&flags.ResultsFormat, "format", defaults.ResultsFormat, "results format: json | csv")
	flag.BoolVar(&flags.Verbose, "verbose", false, "enable debug logs and per-proxy table")
	flag.BoolVar(&flags.NoProgress, "no-progress", false, "disable the progress bar")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		return 2
	}
	inputPath, outputPath := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	applyFlags(&cfg, flags)

	log := logging.NewLogger(cfg.Verbose)

	if err := config.Validate(cfg); err != nil {
		log.Error("invalid configuration", "err", err)
		return 1
	}

	log.Info("starting proxy-checker",
		"type", cfg.ProxyType,
		"timeout_seconds", cfg.TimeoutSeconds,
		"concurrency", cfg.Concurrency,
		"retries", cfg.Retries,
		"target", cfg.TargetURL,
	)

	proxies, skipped, err := parser.LoadFromFile(inputPath)
	if err != nil {
		log.Error("failed to load proxies", "err", err, "path", inputPath)
		return 1
	}
	for _, s := range skipped {
		log.Debug("skipped malformed line", "line_no", s.LineNo, "line", s.Line, "reason", s.Reason)
	}
	log.Info("proxies loaded", "count", len(proxies), "skipped", len(skipped))

	var resolver model.IPResolver
	if cfg.GeoIPPath != "" {
		r, err := geoip.Open(cfg.GeoIPPath)
		if err != nil {
			log.Error("failed to open geoip database", "err", err, "path", cfg.GeoIPPath)
			return 1
		}
		defer r.Close()
		resolver = r
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pr := prober.New(cfg, resolver, log)

	var onResult func(model.ProbeResult)
	if !cfg.NoProgress && len(proxies) > 0 {
		bar := progressbar.Default(int64(len(proxies)), "checking proxies")
		onResult = func(model.ProbeResult) { _ = bar.Add(1) }
	}

	start := time.Now()
	results := checker.RunBatch(ctx, proxies, pr, cfg, onResult)
	duration := time.Since(start)

	if ctx.Err() != nil {
		log.Warn("interrupted, reporting finished probes only")
	}

	rep := report.Build(results)
	stats := analytics.Compute(results, duration)

	if err := output.WriteProxyList(outputPath, rep); err != nil {
		log.Error("failed to write working proxies", "err", err, "path", outputPath)
		return 1
	}
	log.Info("working proxies written", "path", outputPath, "count", len(rep.Working))

	if cfg.ResultsFile != "" {
		if err := output.WriteResults(cfg.ResultsFile, cfg.ResultsFormat, results, stats); err != nil {
			log.Error("failed to write results file", "err", err, "path", cfg.ResultsFile)
		} else {
			log.Info("results written", "path", cfg.ResultsFile, "format", cfg.ResultsFormat)
		}
	}

	if cfg.Verbose {
		output.PrintResultsTable(os.Stdout, results)
	}
	output.PrintSummary(os.Stdout, stats)

	log.Info("batch finished",
		"total_ms", stats.TotalProcessingTimeMs,
		"alive", stats.AliveProxies,
		"total", stats.TotalProxies,
	)
	return 0
}

// applyFlags copies every flag the user set explicitly over cfg, so
// command-line values win over the config file.
func applyFlags(cfg *model.Config, flags model.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "type":
			cfg.ProxyType = flags.ProxyType
		case "timeout":
			cfg.TimeoutSeconds = flags.TimeoutSeconds
		case "concurrency":
			cfg.Concurrency = flags.Concurrency
		case "retries":
			cfg.Retries = flags.Retries
		case "target":
			cfg.TargetURL = flags.TargetURL
		case "rate":
			cfg.RateLimit = flags.RateLimit
		case "geoip":
			cfg.GeoIPPath = flags.GeoIPPath
		case "results":
			cfg.ResultsFile = flags.ResultsFile
		case "format":
			cfg.ResultsFormat = flags.ResultsFormat
		case "verbose":
			cfg.Verbose = flags.Verbose
		case "no-progress":
			cfg.NoProgress = flags.NoProgress
		}
	})
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input-file> <output-file>\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Reads proxies (host:port or host:port:user:pass, one per line) from")
	fmt.Fprintln(os.Stderr, "<input-file>, checks them concurrently, and writes the working subset")
	fmt.Fprintln(os.Stderr, "to <output-file> in input order.")
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}
