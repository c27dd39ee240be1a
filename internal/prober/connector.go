package prober

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"github.com/layerist/proxy-checker/internal/model"
)

// Connector builds an *http.Client whose connections tunnel through
// the given proxy. Variants exist per proxy protocol so the prober is
// not coupled to one networking stack.
type Connector interface {
	Client(p model.Proxy, timeout time.Duration) (*http.Client, error)
}

// ForType returns the connector for a proxy type string.
// Unknown types fall back to HTTP, matching the parser's default.
func ForType(t string) Connector {
	switch t {
	case "socks5":
		return SOCKS5Connector{}
	default:
		return HTTPConnector{}
	}
}

// HTTPConnector tunnels through an HTTP(S) CONNECT proxy.
type HTTPConnector struct{}

func (HTTPConnector) Client(p model.Proxy, timeout time.Duration) (*http.Client, error) {
	u := &url.URL{
		Scheme: "http",
		Host:   p.Addr(),
	}
	if p.HasAuth() {
		u.User = url.UserPassword(p.Username, p.Password)
	}

	transport := &http.Transport{
		Proxy: http.ProxyURL(u),
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: -1,
		}).DialContext,
		TLSHandshakeTimeout: timeout,
		// one connection per probe, released when the probe ends
		DisableKeepAlives: true,
		MaxIdleConns:      1,
	}

	return &http.Client{Transport: transport}, nil
}

// SOCKS5Connector tunnels through a SOCKS5 proxy; the HTTP request to
// the target still looks ordinary, only the TCP dial goes via SOCKS5.
type SOCKS5Connector struct{}

func (SOCKS5Connector) Client(p model.Proxy, timeout time.Duration) (*http.Client, error) {
	var auth *proxy.Auth
	if p.HasAuth() {
		auth = &proxy.Auth{
			User:     p.Username,
			Password: p.Password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", p.Addr(), auth, &net.Dialer{
		Timeout:   timeout,
		KeepAlive: -1,
	})
	if err != nil {
		return nil, fmt.Errorf("build socks5 dialer: %w", err)
	}

	// x/net/proxy only guarantees Dial; prefer DialContext when the
	// returned dialer supports it so cancellation reaches the socket.
	dialContext := func(ctx context.Context, network, addr string) (net.Conn, error) {
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, addr)
		}
		type plainDialer interface {
			Dial(network, address string) (net.Conn, error)
		}
		if pd, ok := dialer.(plainDialer); ok {
			return pd.Dial(network, addr)
		}
		return nil, errors.New("socks5 dialer does not implement Dial")
	}

	transport := &http.Transport{
		DialContext:         dialContext,
		TLSHandshakeTimeout: timeout,
		DisableKeepAlives:   true,
		MaxIdleConns:        1,
	}

	return &http.Client{Transport: transport}, nil
}
