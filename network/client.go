// Package network provides the pre-configured HTTP client used to stream media and artwork from the catalog server.
package network

import (
	"net/http"
	"time"

	"github.com/sonora-player/sonora/constant"
)

// Client is shared by the song and thumbnail caches. It has no overall timeout since
// song downloads can legitimately take minutes; stalled servers are caught by the
// response header timeout instead.
var Client = &http.Client{
	Transport: &userAgentTransport{base: newTransport()},
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 32
	t.MaxIdleConnsPerHost = 8
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 5 * time.Second
	return t
}

// userAgentTransport stamps the sonora User-Agent on requests that do not set one.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return t.base.RoundTrip(req)
}
