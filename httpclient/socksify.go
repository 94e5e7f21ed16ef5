package httpclient

import (
	"context"
	"net"
	"net/url"
	"os"

	goproxy "golang.org/x/net/proxy"
)

// AllProxyEnvVar names a SOCKS5 proxy url that every connection is
// routed through, except hosts listed in no_proxy.
const AllProxyEnvVar = "CHKSUM_ALL_PROXY"

type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

func (f DialContextFunc) Dial(network, address string) (net.Conn, error) {
	return f(context.Background(), network, address)
}

func (f DialContextFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f(ctx, network, address)
}

// SOCKS5DialContextFuncFromEnvironment falls back to origDialer when the
// proxy variable is unset or cannot be parsed.
func SOCKS5DialContextFuncFromEnvironment(origDialer *net.Dialer) DialContextFunc {
	allProxy := os.Getenv(AllProxyEnvVar)
	if len(allProxy) == 0 {
		return origDialer.DialContext
	}

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		return origDialer.DialContext
	}

	proxy, err := goproxy.FromURL(proxyURL, origDialer)
	if err != nil {
		return origDialer.DialContext
	}

	noProxy := os.Getenv("no_proxy")
	if len(noProxy) == 0 {
		return contextDialer(proxy)
	}

	perHost := goproxy.NewPerHost(proxy, origDialer)
	perHost.AddFromString(noProxy)

	return perHost.DialContext
}

func contextDialer(dialer goproxy.Dialer) DialContextFunc {
	if d, ok := dialer.(goproxy.ContextDialer); ok {
		return d.DialContext
	}

	return func(_ context.Context, network, address string) (net.Conn, error) {
		return dialer.Dial(network, address)
	}
}
