package gts

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

const EndpointDefaultTimeout = 10

type Endpoint struct {
	Url                string
	Method             string
	Body               string
	Headers            []Header
	AllowedStatusCodes []int
	HttpClient         *http.Client
	Timeout            int
	Cache              *ResponseCache
	CacheTTL           time.Duration
}

type Header struct {
	Name  string
	Value string
}

// StatusCodeError is returned when the upstream answers with a status code
// that is not 200 and not explicitly allowed
type StatusCodeError struct {
	Url        string
	StatusCode int
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("Status code: %d from %s", e.StatusCode, e.Url)
}

var JSONHeaders = []Header{
	Header{
		Name:  "Accept",
		Value: "application/json, text/plain, */*",
	},
	Header{
		Name:  "Accept-Encoding",
		Value: "gzip",
	},
	Header{
		Name:  "Content-Type",
		Value: "application/json;charset=utf-8",
	},
}

func NewJSONPostEndpoint(url string, body string, timeout int) *Endpoint {
	endpoint := new(Endpoint)
	endpoint.Url = url
	endpoint.Method = "POST"
	endpoint.Body = body
	endpoint.Headers = JSONHeaders
	endpoint.Timeout = timeout

	return endpoint
}

func (endpoint *Endpoint) GenerateCacheKey() string {
	if endpoint.Method == "GET" {
		return endpoint.Url
	} else if endpoint.Method == "POST" {
		hash := sha256.Sum256([]byte(endpoint.Body))
		hashString := hex.EncodeToString(hash[:])
		return fmt.Sprintf("%s|%s", endpoint.Url, hashString)
	} else {
		return ""
	}
}

// FetchCached returns a cached body when the endpoint has a cache and a
// matching entry has not expired, otherwise it fetches and stores the body
func (endpoint *Endpoint) FetchCached(name string) (body []byte, cacheMiss bool, err error) {
	key := endpoint.GenerateCacheKey()
	if endpoint.Cache == nil || endpoint.CacheTTL <= 0 || len(key) == 0 {
		body, err = endpoint.Fetch(name)
		return body, true, err
	}

	if cached, ok := endpoint.Cache.Get(key); ok {
		Log.Debugf("%s: cache hit for %s", name, endpoint.Url)
		return cached, false, nil
	}

	body, err = endpoint.Fetch(name)
	if err != nil {
		return body, true, err
	}
	endpoint.Cache.Put(key, body, endpoint.CacheTTL)

	return body, true, nil
}

func (endpoint *Endpoint) httpClient() *http.Client {
	if endpoint.HttpClient != nil {
		return endpoint.HttpClient
	}

	timeout := endpoint.Timeout
	if timeout <= 0 {
		timeout = EndpointDefaultTimeout
	}

	return &http.Client{
		Timeout: time.Duration(timeout) * time.Second,
	}
}

func (endpoint *Endpoint) Fetch(name string) ([]byte, error) {
	if endpoint.Method != "POST" && endpoint.Method != "GET" {
		return nil, fmt.Errorf("Unknown method: %s", endpoint.Method)
	}

	req, err := http.NewRequest(endpoint.Method, endpoint.Url, strings.NewReader(endpoint.Body))
	if err != nil {
		return nil, err
	}

	for _, header := range endpoint.Headers {
		req.Header.Add(header.Name, header.Value)
	}

	resp, err := endpoint.httpClient().Do(req)
	if err != nil {
		Log.Debugf("WARNING: Error during fetch: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		Log.Debug("Decompressing gzipped content...")

		gzReader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		body, err = ioutil.ReadAll(gzReader)
		if err != nil {
			return nil, err
		}
	}

	Log.Debugf("%s: fetched %d bytes with status code %d from %s", name, len(body), resp.StatusCode, endpoint.Url)

	if resp.StatusCode != 200 && !endpoint.statusAllowed(resp.StatusCode) {
		Log.Warnf("%s: Status code: %d, %s", name, resp.StatusCode, truncate(string(body), 128))
		return body, &StatusCodeError{Url: endpoint.Url, StatusCode: resp.StatusCode}
	}

	return body, nil
}

func (endpoint *Endpoint) statusAllowed(code int) bool {
	for _, allowed := range endpoint.AllowedStatusCodes {
		if allowed == code {
			return true
		}
	}

	return false
}

func truncate(str string, max int) string {
	if len(str) <= max {
		return str
	}

	return str[:max]
}
