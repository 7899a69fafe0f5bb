package httpclient

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound call made by the bridge
const DefaultTimeout = 5 * time.Second

// New creates the pooled client shared by every backend and refresher.
// The timeout covers the whole exchange, body read included.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
