package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"log"
	"net"
	"net/http"
	"time"

	"code.cloudfoundry.org/tlsconfig"
)

const (
	defaultHandshakeTimeout   = 30 * time.Second
	mutualTLSHandshakeTimeout = 10 * time.Second
	mutualTLSRequestTimeout   = 10 * time.Second
)

var (
	DefaultClient = CreateDefaultClientInsecureSkipVerify()
	defaultDialer = SOCKS5DialContextFuncFromEnvironment(&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	})
)

type Client interface {
	Do(*http.Request) (*http.Response, error)
}

// CreateDefaultClient verifies servers against certPool, or against the
// system roots when certPool is nil.
func CreateDefaultClient(certPool *x509.CertPool) *http.Client {
	tlsConfig := buildTLSConfig(
		[]tlsconfig.TLSOption{WithInsecureSkipVerify(false)},
		tlsconfig.WithAuthority(certPool),
	)
	return newClient(tlsConfig, defaultHandshakeTimeout, 0)
}

func CreateDefaultClientInsecureSkipVerify() *http.Client {
	tlsConfig := buildTLSConfig(
		[]tlsconfig.TLSOption{WithInsecureSkipVerify(true)},
		tlsconfig.WithAuthority(nil),
	)
	return newClient(tlsConfig, defaultHandshakeTimeout, 0)
}

// NewMutualTLSClient presents identity to servers signed by caCertPool
// and expects them to answer as serverName.
func NewMutualTLSClient(identity tls.Certificate, caCertPool *x509.CertPool, serverName string) *http.Client {
	tlsConfig := buildTLSConfig(
		[]tlsconfig.TLSOption{tlsconfig.WithIdentity(identity)},
		tlsconfig.WithAuthority(caCertPool),
		tlsconfig.WithServerName(serverName),
	)
	return newClient(tlsConfig, mutualTLSHandshakeTimeout, mutualTLSRequestTimeout)
}

func WithInsecureSkipVerify(insecureSkipVerify bool) tlsconfig.TLSOption {
	return func(config *tls.Config) error {
		config.InsecureSkipVerify = insecureSkipVerify
		return nil
	}
}

// buildTLSConfig starts from the internal service defaults. The options
// are all local, so an error here is a programming mistake.
func buildTLSConfig(opts []tlsconfig.TLSOption, clientOpts ...tlsconfig.ClientOption) *tls.Config {
	opts = append([]tlsconfig.TLSOption{tlsconfig.WithInternalServiceDefaults()}, opts...)

	tlsConfig, err := tlsconfig.Build(opts...).Client(clientOpts...)
	if err != nil {
		log.Fatal(err)
	}

	return tlsConfig
}

// newClient never reuses connections; every request dials through the
// environment's proxy settings.
func newClient(tlsConfig *tls.Config, handshakeTimeout, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig:     tlsConfig,
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         defaultDialer,
			TLSHandshakeTimeout: handshakeTimeout,
			DisableKeepAlives:   true,
		},
		Timeout: timeout,
	}
}
