package model

import (
	"fmt"
	"net"
	"strconv"
)

// Proxy is a normalized proxy endpoint parsed from input lines such as:
//   host:port
//   host:port:username:password
//   username:password@host:port
type Proxy struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Type     string `json:"type,omitempty"` // "http", "socks5", "" if unknown at parse time
	Raw      string `json:"-"`              // original line for debugging
}

// Addr returns the host:port pair in dialable form.
func (p Proxy) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// HasAuth reports whether the proxy carries credentials.
func (p Proxy) HasAuth() bool {
	return p.Username != "" || p.Password != ""
}

// String renders the proxy back in the input line format,
// credentials included.
func (p Proxy) String() string {
	if p.HasAuth() {
		return fmt.Sprintf("%s:%d:%s:%s", p.Host, p.Port, p.Username, p.Password)
	}
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// FailureReason classifies why a probe failed.
type FailureReason string

const (
	ReasonTimeout  FailureReason = "timeout"
	ReasonRefused  FailureReason = "connection-refused"
	ReasonAuth     FailureReason = "authentication-rejected"
	ReasonProtocol FailureReason = "protocol-error"
	ReasonDNS      FailureReason = "dns-resolution-failure"
	ReasonUnknown  FailureReason = "unknown"
)

// ProbeResult is the outcome of testing a single proxy.
// Index is the proxy's position in the input sequence so the final
// report can be rebuilt in input order no matter when the probe finished.
type ProbeResult struct {
	Proxy      Proxy         `json:"proxy"`
	Index      int           `json:"-"`
	Alive      bool          `json:"alive"`
	LatencyMs  int64         `json:"latency_ms,omitempty"` // set once a response (or success) was seen
	StatusCode int           `json:"status_code,omitempty"`
	ExitIP     string        `json:"exit_ip,omitempty"`
	Country    string        `json:"country,omitempty"`
	City       string        `json:"city,omitempty"`
	ISP        string        `json:"isp,omitempty"`
	Reason     FailureReason `json:"reason,omitempty"` // empty when Alive
	Error      string        `json:"error,omitempty"`
}

// Report is the final output: the working proxies in input order.
type Report struct {
	Working []Proxy
}

// Lines renders the report one proxy per line, input format preserved.
func (r Report) Lines() []string {
	out := make([]string, 0, len(r.Working))
	for _, p := range r.Working {
		out = append(out, p.String())
	}
	return out
}

// BatchStats aggregates summary analytics for an entire run.
type BatchStats struct {
	TotalProxies          int     `json:"total_proxies"`
	UniqueProxies         int     `json:"unique_proxies"`
	AliveProxies          int     `json:"alive_proxies"`
	AvgLatencyMs          float64 `json:"avg_latency_ms"`
	SuccessRatePct        float64 `json:"success_rate_pct"`
	TotalProcessingTimeMs int64   `json:"total_processing_time_ms"`
}
