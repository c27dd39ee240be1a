package prober

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/corpix/uarand"

	"github.com/layerist/proxy-checker/internal/model"
)

// maxBodyBytes caps how much of the target response we read; the probe
// only needs the reported origin IP.
const maxBodyBytes = 64 << 10

// Prober performs one connectivity check per call: a GET request to
// Target routed through the proxy under test. One connection is opened
// per call and released on every exit path.
type Prober struct {
	Target    string
	Timeout   time.Duration
	Connector Connector
	Resolver  model.IPResolver // optional geo annotation
	Log       *slog.Logger
}

func New(cfg model.Config, resolver model.IPResolver, log *slog.Logger) *Prober {
	return &Prober{
		Target:    cfg.TargetURL,
		Timeout:   cfg.Timeout(),
		Connector: ForType(cfg.ProxyType),
		Resolver:  resolver,
		Log:       log,
	}
}

// Probe tests a single proxy. The timeout covers the entire attempt:
// dial, proxy handshake, request, and response read. Failures are
// classified, never returned as errors; the run never aborts on one
// bad proxy.
func (pr *Prober) Probe(ctx context.Context, p model.Proxy) model.ProbeResult {
	out := model.ProbeResult{Proxy: p}

	ctx, cancel := context.WithTimeout(ctx, pr.Timeout)
	defer cancel()

	connector := pr.Connector
	if p.Type != "" {
		connector = ForType(p.Type)
	}

	client, err := connector.Client(p, pr.Timeout)
	if err != nil {
		out.Reason = model.ReasonUnknown
		out.Error = err.Error()
		return out
	}
	defer closeIdle(client)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pr.Target, nil)
	if err != nil {
		out.Reason = model.ReasonUnknown
		out.Error = err.Error()
		return out
	}
	req.Header.Set("User-Agent", uarand.GetRandom())

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		out.Reason = Classify(err)
		out.Error = err.Error()
		if pr.Log != nil {
			pr.Log.Debug("probe failed", "proxy", p.Addr(), "reason", out.Reason, "err", err)
		}
		return out
	}
	defer resp.Body.Close()

	// A response arrived, so a connection was established; latency is
	// meaningful from here on even if the proxy still fails the check.
	out.LatencyMs = time.Since(start).Milliseconds()
	out.StatusCode = resp.StatusCode

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	switch {
	case resp.StatusCode == http.StatusProxyAuthRequired:
		out.Reason = model.ReasonAuth
		out.Error = resp.Status
		return out
	case resp.StatusCode != http.StatusOK:
		out.Reason = model.ReasonProtocol
		out.Error = resp.Status
		return out
	}

	out.Alive = true
	out.ExitIP = extractOrigin(body)

	if pr.Resolver != nil && out.ExitIP != "" {
		if info, err := pr.Resolver.Lookup(out.ExitIP); err == nil {
			out.Country = info.Country
			out.City = info.City
			out.ISP = info.ISP
		} else if pr.Log != nil {
			pr.Log.Debug("geo lookup failed", "ip", out.ExitIP, "err", err)
		}
	}

	if pr.Log != nil {
		pr.Log.Debug("probe ok", "proxy", p.Addr(), "latency_ms", out.LatencyMs, "exit_ip", out.ExitIP)
	}
	return out
}

func closeIdle(c *http.Client) {
	if t, ok := c.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

// extractOrigin pulls the exit IP out of the target response. It
// understands httpbin-style {"origin": "a, b"} bodies and plain-text
// what-is-my-ip responses; anything else yields "".
func extractOrigin(body []byte) string {
	var parsed struct {
		Origin string `json:"origin"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Origin != "" {
		return firstIPToken(parsed.Origin)
	}

	text := strings.TrimSpace(string(body))
	if net.ParseIP(text) != nil {
		return text
	}
	return ""
}

func firstIPToken(origin string) string {
	if origin == "" {
		return ""
	}
	parts := strings.Split(origin, ",")
	return strings.TrimSpace(parts[0])
}
