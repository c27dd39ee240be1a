package checker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/layerist/proxy-checker/internal/model"
)

// Prober performs one connectivity check against one proxy.
type Prober interface {
	Probe(ctx context.Context, p model.Proxy) model.ProbeResult
}

// RunBatch concurrently probes all proxies and returns one result per
// input descriptor. At most cfg.Concurrency probes are in flight at
// once; each result carries the index of its input line so callers can
// rebuild input order regardless of completion order.
//
// onResult, when non-nil, is called once per finished probe, in
// completion order, from worker goroutines.
//
// Cancelling ctx stops admission promptly: probes that never started
// are reported failed without dialing, finished results are kept.
func RunBatch(ctx context.Context, proxies []model.Proxy, pr Prober, cfg model.Config, onResult func(model.ProbeResult)) []model.ProbeResult {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	resultsCh := make(chan model.ProbeResult, len(proxies))
	wg := &sync.WaitGroup{}

	sem := make(chan struct{}, concurrency)

	for i, p := range proxies {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()

			var res model.ProbeResult

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()

				// Re-check after admission: the semaphore may have a
				// free slot at the same moment the context dies.
				if ctx.Err() != nil {
					res = canceledResult(p)
					break
				}
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						res = canceledResult(p)
						break
					}
				}
				res = probeWithRetries(ctx, pr, p, cfg.Retries)
			case <-ctx.Done():
				res = canceledResult(p)
			}

			res.Index = i
			if onResult != nil {
				onResult(res)
			}
			resultsCh <- res
		}()
	}

	wg.Wait()
	close(resultsCh)

	out := make([]model.ProbeResult, 0, len(proxies))
	for r := range resultsCh {
		out = append(out, r)
	}
	return out
}

// probeWithRetries attempts a proxy up to retries times, stopping at
// the first success. The single-probe contract is unchanged: each
// attempt is one independent probe. The last attempt's result is
// returned when all fail.
func probeWithRetries(ctx context.Context, pr Prober, p model.Proxy, retries int) model.ProbeResult {
	if retries < 1 {
		retries = 1
	}

	var last model.ProbeResult
	for attempt := 1; attempt <= retries; attempt++ {
		last = safeProbe(ctx, pr, p)
		if last.Alive {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	return last
}

// safeProbe isolates one probe: a panic inside the Prober becomes an
// unclassified failure instead of taking down sibling probes.
func safeProbe(ctx context.Context, pr Prober, p model.Proxy) (res model.ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			res = model.ProbeResult{
				Proxy:  p,
				Reason: model.ReasonUnknown,
				Error:  fmt.Sprintf("probe panic: %v", r),
			}
		}
	}()
	return pr.Probe(ctx, p)
}

func canceledResult(p model.Proxy) model.ProbeResult {
	return model.ProbeResult{
		Proxy:  p,
		Reason: model.ReasonUnknown,
		Error:  "canceled",
	}
}
