package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// maxRedirects bounds how many redirects a single fetch follows.
const maxRedirects = 10

// ErrInvalidProxyAddress is returned when the proxy address is not in
// "[user:password@]host:port" form.
var ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected [user:password@]host:port")

// Options configures an HTTP client.
type Options struct {
	// Timeout bounds each request including reading the body.
	// Zero means no timeout.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "[user:password@]host:port" form.
	// Empty means connect directly.
	ProxyAddress string

	// UserAgent is sent on every request that does not set one.
	UserAgent string
}

// NewHTTPClient creates an HTTP client from opts.
func NewHTTPClient(opts Options) (*http.Client, error) {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("default transport is not *http.Transport")
	}
	tr := base.Clone()

	if opts.ProxyAddress != "" {
		dialer, err := newSOCKS5Dialer(opts.ProxyAddress)
		if err != nil {
			return nil, err
		}
		// The SOCKS5 dialer handles proxying; environment proxies must not stack on top.
		tr.Proxy = nil
		tr.DialContext = dialContext(dialer)
	}

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      tr,
			userAgent: opts.UserAgent,
		},
		Timeout: opts.Timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// newSOCKS5Dialer creates a SOCKS5 dialer for address, which may carry
// credentials before an '@'.
func newSOCKS5Dialer(address string) (proxy.Dialer, error) {
	hostPort, auth, err := ParseProxyAddress(address)
	if err != nil {
		return nil, err
	}

	dialer, err := proxy.SOCKS5("tcp", hostPort, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	return dialer, nil
}

// dialContext adapts a proxy.Dialer to http.Transport.DialContext.
// Dialers from x/net/proxy implement proxy.ContextDialer; others fall back
// to a goroutine that honours cancellation of ctx.
func dialContext(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()

		select {
		case result := <-resultCh:
			return result.conn, result.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// ParseProxyAddress splits a "[user:password@]host:port" proxy address into
// its host:port part and optional SOCKS5 credentials.
func ParseProxyAddress(address string) (string, *proxy.Auth, error) {
	var auth *proxy.Auth
	hostPort := address
	if i := strings.LastIndex(address, "@"); i >= 0 {
		userinfo := address[:i]
		hostPort = address[i+1:]
		user, password, _ := strings.Cut(userinfo, ":")
		if user == "" {
			return "", nil, ErrInvalidProxyAddress
		}
		auth = &proxy.Auth{User: user, Password: password}
	}

	if !isValidHostPort(hostPort) {
		return "", nil, ErrInvalidProxyAddress
	}
	return hostPort, auth, nil
}

// isValidHostPort checks for a non-empty host and a port in 1..65535.
func isValidHostPort(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// headerInjectingTransport wraps an http.RoundTripper to add default
// request headers.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	if clone.Header.Get("Accept-Language") == "" {
		clone.Header.Set("Accept-Language", "en-US,en;q=0.5")
	}

	return t.base.RoundTrip(clone)
}
