package prober

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/layerist/proxy-checker/internal/model"
)

// Classify maps a probe error onto the failure taxonomy. It inspects
// wrapped error types first and falls back to message matching for
// errors the net stack only reports as strings (notably the SOCKS5
// dialer's handshake failures).
func Classify(err error) model.FailureReason {
	if err == nil {
		return ""
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return model.ReasonDNS
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return model.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ReasonTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return model.ReasonRefused
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return model.ReasonRefused
	case strings.Contains(msg, "username/password"),
		strings.Contains(msg, "authentication"),
		strings.Contains(msg, "407"):
		return model.ReasonAuth
	case strings.Contains(msg, "unexpected protocol version"),
		strings.Contains(msg, "malformed"),
		strings.Contains(msg, "socks"),
		strings.Contains(msg, "unexpected eof"),
		strings.Contains(msg, "reset by peer"):
		return model.ReasonProtocol
	}

	return model.ReasonUnknown
}
