// Package fingerprint builds HTTP transports whose TLS ClientHello matches
// a real browser, so stores that gate on TLS fingerprints serve the same
// markup they serve that browser.
package fingerprint

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	utls "github.com/refraction-networking/utls"
)

// Profile names a ClientHello shape.
type Profile string

const (
	Chrome  Profile = "chrome"
	Firefox Profile = "firefox"
	Safari  Profile = "safari"
	Stdlib  Profile = "stdlib" // plain crypto/tls handshake
	Random  Profile = "random"
)

var helloIDs = map[Profile]utls.ClientHelloID{
	Chrome:  utls.HelloChrome_Auto,
	Firefox: utls.HelloFirefox_Auto,
	Safari:  utls.HelloIOS_Auto,
	Random:  utls.HelloRandomizedALPN,
}

// Transport returns a RoundTripper whose TLS handshake impersonates the
// given profile. proxyFunc, when non-nil, is installed as the transport's
// proxy selector.
func Transport(p Profile, proxyFunc func(*http.Request) (*url.URL, error)) (http.RoundTripper, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if proxyFunc != nil {
		base.Proxy = proxyFunc
	}

	if p == Stdlib || p == "" {
		return base, nil
	}

	helloID, ok := helloIDs[p]
	if !ok {
		return nil, fmt.Errorf("unknown fingerprint profile %q", p)
	}

	base.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		raw, err := base.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		conn := utls.UClient(raw, &utls.Config{ServerName: host}, helloID)
		if err := conn.HandshakeContext(ctx); err != nil {
			_ = raw.Close()
			return nil, fmt.Errorf("tls handshake with %s: %w", host, err)
		}
		return conn, nil
	}

	return base, nil
}
