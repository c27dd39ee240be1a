package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/layerist/proxy-checker/internal/model"
)

// SkippedLine records an input line that could not be parsed.
// Skipped lines are diagnostics, never fatal.
type SkippedLine struct {
	LineNo int
	Line   string
	Reason string
}

// LoadFromFile reads a proxy list file and returns the parsed proxies
// plus any skipped lines. Supported formats:
//   host:port
//   host:port:username:password
//   username:password@host:port
//
// Empty lines and lines starting with '#' are ignored.
func LoadFromFile(path string) ([]model.Proxy, []SkippedLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads proxy lines from r. It is a pure transformation: malformed
// lines are collected as SkippedLine and parsing continues.
func Parse(r io.Reader) ([]model.Proxy, []SkippedLine, error) {
	var (
		out     []model.Proxy
		skipped []SkippedLine
	)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		p, err := parseProxyLine(line)
		if err != nil {
			skipped = append(skipped, SkippedLine{
				LineNo: lineNo,
				Line:   line,
				Reason: err.Error(),
			})
			continue
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan input: %w", err)
	}
	return out, skipped, nil
}

// parseProxyLine parses a single proxy line.
//
// Supported:
//   1. host:port
//   2. host:port:user:pass
//   3. user:pass@host:port
func parseProxyLine(line string) (model.Proxy, error) {
	// Case 3: username:password@host:port
	if strings.Contains(line, "@") {
		parts := strings.SplitN(line, "@", 2)
		if len(parts) != 2 {
			return model.Proxy{}, fmt.Errorf("invalid proxy format: %q", line)
		}

		user, pass, err := splitUserPass(parts[0])
		if err != nil {
			return model.Proxy{}, err
		}

		host, port, err := splitHostPort(parts[1])
		if err != nil {
			return model.Proxy{}, err
		}

		return model.Proxy{
			Host:     host,
			Port:     port,
			Username: user,
			Password: pass,
			Raw:      line,
		}, nil
	}

	// No "@": host:port or host:port:user:pass
	col := strings.Split(line, ":")

	switch len(col) {
	case 2:
		host, port, err := splitHostPort(line)
		if err != nil {
			return model.Proxy{}, err
		}
		return model.Proxy{
			Host: host,
			Port: port,
			Raw:  line,
		}, nil

	case 4:
		host, port, err := splitHostPort(col[0] + ":" + col[1])
		if err != nil {
			return model.Proxy{}, err
		}
		return model.Proxy{
			Host:     host,
			Port:     port,
			Username: col[2],
			Password: col[3],
			Raw:      line,
		}, nil

	default:
		return model.Proxy{}, fmt.Errorf("unrecognized proxy format: %q", line)
	}
}

func splitUserPass(s string) (string, string, error) {
	up := strings.SplitN(s, ":", 2)
	if len(up) != 2 {
		return "", "", fmt.Errorf("invalid auth (expected user:pass): %q", s)
	}
	return up[0], up[1], nil
}

// splitHostPort handles host:port for IPv4 or hostname and validates
// the port range.
func splitHostPort(s string) (string, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid host:port: %q", s)
	}
	host := parts[0]
	if host == "" {
		return "", 0, fmt.Errorf("empty host in %q", s)
	}

	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q", parts[1])
	}
	if port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("port %d out of range", port)
	}
	return host, port, nil
}
