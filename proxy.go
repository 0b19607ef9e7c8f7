package gts

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const ProxyUrlEnvName = "GTS_PROXY_URL"
const ProxyUrlAWSParameterName = "gettheshot-proxy-url"

// ProxyEndpoint is an http(s) proxy, optionally with basic auth, that
// upstream requests are routed through
type ProxyEndpoint struct {
	url *url.URL
}

func NewProxyEndpoint(proxyUrlStr string) (*ProxyEndpoint, error) {
	proxyUrl, err := url.Parse(strings.TrimSpace(proxyUrlStr))
	if err != nil {
		return nil, err
	}

	if proxyUrl.Scheme != "http" && proxyUrl.Scheme != "https" {
		return nil, fmt.Errorf("Malformed proxy url: must be in format http(s)://[username:password@]host:port")
	}

	if len(proxyUrl.Hostname()) == 0 || len(proxyUrl.Port()) == 0 {
		return nil, fmt.Errorf("Malformed proxy url: missing host or port")
	}

	return &ProxyEndpoint{url: proxyUrl}, nil
}

func (pe *ProxyEndpoint) GetUrl() *url.URL {
	return pe.url
}

func (pe *ProxyEndpoint) String() string {
	return censorUrl(pe.url)
}

func (pe *ProxyEndpoint) GetHttpClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	transport.Proxy = http.ProxyURL(pe.url)

	client := new(http.Client)
	client.Transport = transport
	client.Timeout = timeout

	return client
}

// hides the password portion of a proxy url for logging
func censorUrl(proxyUrl *url.URL) string {
	if proxyUrl.User == nil {
		return proxyUrl.String() //no auth, just return the plain url
	}

	return fmt.Sprintf("%s://%s:<snip>@%s", proxyUrl.Scheme, proxyUrl.User.Username(), proxyUrl.Host)
}
