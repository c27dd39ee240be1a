package checker

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/layerist/proxy-checker/internal/model"
	"github.com/layerist/proxy-checker/internal/report"
)

// stubProber lets tests script probe outcomes without the network.
type stubProber struct {
	fn func(p model.Proxy) model.ProbeResult
}

func (s *stubProber) Probe(ctx context.Context, p model.Proxy) model.ProbeResult {
	return s.fn(p)
}

func testProxies(n int) []model.Proxy {
	out := make([]model.Proxy, n)
	for i := range out {
		out[i] = model.Proxy{Host: "10.0.0.1", Port: 1000 + i}
	}
	return out
}

func alwaysAlive(p model.Proxy) model.ProbeResult {
	return model.ProbeResult{Proxy: p, Alive: true, LatencyMs: 1}
}

func alwaysDead(p model.Proxy) model.ProbeResult {
	return model.ProbeResult{Proxy: p, Reason: model.ReasonRefused, Error: "connection refused"}
}

func TestRunBatch_AllAliveKeepsInputOrder(t *testing.T) {
	proxies := testProxies(25)
	cfg := model.Config{Concurrency: 4, Retries: 1}

	results := RunBatch(context.Background(), proxies, &stubProber{fn: alwaysAlive}, cfg, nil)
	if len(results) != len(proxies) {
		t.Fatalf("want %d results, got %d", len(proxies), len(results))
	}

	rep := report.Build(results)
	if !reflect.DeepEqual(rep.Working, proxies) {
		t.Fatalf("report should equal input in order:\ngot  %#v\nwant %#v", rep.Working, proxies)
	}
}

func TestRunBatch_AllDeadYieldsEmptyReport(t *testing.T) {
	proxies := testProxies(10)
	cfg := model.Config{Concurrency: 4, Retries: 1}

	results := RunBatch(context.Background(), proxies, &stubProber{fn: alwaysDead}, cfg, nil)
	if len(results) != len(proxies) {
		t.Fatalf("want %d results, got %d", len(proxies), len(results))
	}

	rep := report.Build(results)
	if len(rep.Working) != 0 {
		t.Fatalf("report should be empty, got %#v", rep.Working)
	}
}

func TestRunBatch_SelectiveSuccess(t *testing.T) {
	proxies := []model.Proxy{
		{Host: "1.2.3.4", Port: 8080},
		{Host: "5.6.7.8", Port: 3128, Username: "user", Password: "pass"},
	}
	cfg := model.Config{Concurrency: 2, Retries: 1}

	stub := &stubProber{fn: func(p model.Proxy) model.ProbeResult {
		if p.Host == "5.6.7.8" {
			return model.ProbeResult{Proxy: p, Alive: true, LatencyMs: 1}
		}
		return model.ProbeResult{Proxy: p, Reason: model.ReasonTimeout, Error: "timeout"}
	}}

	rep := report.Build(RunBatch(context.Background(), proxies, stub, cfg, nil))
	want := []string{"5.6.7.8:3128:user:pass"}
	if !reflect.DeepEqual(rep.Lines(), want) {
		t.Fatalf("got %v want %v", rep.Lines(), want)
	}
}

func TestRunBatch_ConcurrencyBound(t *testing.T) {
	const n = 5
	proxies := testProxies(40)
	cfg := model.Config{Concurrency: n, Retries: 1}

	var inFlight, maxInFlight atomic.Int64
	stub := &stubProber{fn: func(p model.Proxy) model.ProbeResult {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return model.ProbeResult{Proxy: p, Alive: true}
	}}

	RunBatch(context.Background(), proxies, stub, cfg, nil)
	if got := maxInFlight.Load(); got > n {
		t.Fatalf("observed %d concurrent probes, limit is %d", got, n)
	}
}

func TestRunBatch_PanicIsIsolated(t *testing.T) {
	proxies := testProxies(3)
	cfg := model.Config{Concurrency: 3, Retries: 1}

	stub := &stubProber{fn: func(p model.Proxy) model.ProbeResult {
		if p.Port == 1001 {
			panic("boom")
		}
		return model.ProbeResult{Proxy: p, Alive: true}
	}}

	results := RunBatch(context.Background(), proxies, stub, cfg, nil)
	if len(results) != 3 {
		t.Fatalf("want 3 results, got %d", len(results))
	}

	rep := report.Build(results)
	if len(rep.Working) != 2 {
		t.Fatalf("siblings should survive a panicking probe, got %v", rep.Lines())
	}
	for _, r := range results {
		if r.Proxy.Port == 1001 {
			if r.Alive || r.Reason != model.ReasonUnknown {
				t.Fatalf("panicking probe should be unknown failure: %#v", r)
			}
		}
	}
}

func TestRunBatch_Retries(t *testing.T) {
	proxies := testProxies(1)
	cfg := model.Config{Concurrency: 1, Retries: 3}

	var attempts atomic.Int64
	stub := &stubProber{fn: func(p model.Proxy) model.ProbeResult {
		if attempts.Add(1) < 3 {
			return model.ProbeResult{Proxy: p, Reason: model.ReasonTimeout}
		}
		return model.ProbeResult{Proxy: p, Alive: true}
	}}

	results := RunBatch(context.Background(), proxies, stub, cfg, nil)
	if !results[0].Alive {
		t.Fatalf("third attempt succeeded, result should be alive: %#v", results[0])
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("want 3 attempts, got %d", got)
	}
}

func TestRunBatch_CancellationPreservesFinishedResults(t *testing.T) {
	proxies := testProxies(20)
	cfg := model.Config{Concurrency: 1, Retries: 1}

	ctx, cancel := context.WithCancel(context.Background())

	var done atomic.Int64
	stub := &stubProber{fn: func(p model.Proxy) model.ProbeResult {
		if done.Add(1) == 3 {
			cancel()
		}
		return model.ProbeResult{Proxy: p, Alive: true}
	}}

	results := RunBatch(ctx, proxies, stub, cfg, nil)
	if len(results) != len(proxies) {
		t.Fatalf("every input needs a result, got %d/%d", len(results), len(proxies))
	}

	var alive, canceled int
	for _, r := range results {
		if r.Alive {
			alive++
		}
		if r.Error == "canceled" {
			canceled++
		}
	}
	if alive < 3 {
		t.Fatalf("finished probes must be preserved, alive=%d", alive)
	}
	if canceled == 0 {
		t.Fatal("expected some probes to be cut off by cancellation")
	}
}

func TestRunBatch_Deterministic(t *testing.T) {
	proxies := testProxies(30)
	cfg := model.Config{Concurrency: 8, Retries: 1}
	stub := &stubProber{fn: func(p model.Proxy) model.ProbeResult {
		if p.Port%3 == 0 {
			return model.ProbeResult{Proxy: p, Alive: true}
		}
		return model.ProbeResult{Proxy: p, Reason: model.ReasonRefused}
	}}

	first := report.Build(RunBatch(context.Background(), proxies, stub, cfg, nil))
	second := report.Build(RunBatch(context.Background(), proxies, stub, cfg, nil))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input and stub must give identical reports:\n%v\n%v", first.Lines(), second.Lines())
	}
}

func TestRunBatch_ProgressCallbackFiresPerProbe(t *testing.T) {
	proxies := testProxies(12)
	cfg := model.Config{Concurrency: 4, Retries: 1}

	var calls atomic.Int64
	RunBatch(context.Background(), proxies, &stubProber{fn: alwaysAlive}, cfg, func(model.ProbeResult) {
		calls.Add(1)
	})
	if got := calls.Load(); got != int64(len(proxies)) {
		t.Fatalf("want %d progress callbacks, got %d", len(proxies), got)
	}
}
