// Package transport builds the HTTP clients used to reach the update catalog.
//
// By default requests go directly to the catalog. When a SOCKS5 proxy is
// configured, every connection is dialed through it with
// golang.org/x/net/proxy. Either way the client stamps the configured
// User-Agent and Accept headers on requests that do not set their own.
//
// # Usage
//
//	client, err := transport.NewHTTPClient(transport.Options{
//	    Timeout:      60 * time.Second,
//	    ProxyAddress: "127.0.0.1:1080",
//	    UserAgent:    "kbreplace/1.0",
//	})
package transport
