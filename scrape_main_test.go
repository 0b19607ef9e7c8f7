package gts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const testRunConfigYAML = `eligibility_url: "%s/public/eligibility"
search_url: "%s/public/locations/search"
scan_delay: 0
from_date: "2021-04-07"
dump_output: true
dump_dir: "%s"
scan_targets:
  - zipcode: "43215"
    lat: 39.96
    lng: -83.0
  - zipcode: "43210"
    lat: 40.0
    lng: -83.01
`

func newUpstreamServer(t *testing.T, token string) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/public/eligibility", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"vaccineData": %q}`, token)
	})

	mux.HandleFunc("/public/locations/search", func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		body, _ := ioutil.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("Bad search request: %v", err)
		}

		if req.VaccineData != token {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		end := "11:00:00"
		if req.Location.Lat == 40.0 {
			end = "12:00:00"
		}

		fmt.Fprintf(w, `{"locations": [{"name": "Clinic A", "displayAddress": "1 Main St", "startDate": "null", "endDate": "null",
			"openHours": [{"days": ["Monday"], "localStart": "09:00:00", "localEnd": %q}]}]}`, end)
	})

	return httptest.NewServer(mux)
}

func newRunConfig(t *testing.T, serverUrl string) (*Config, string) {
	dir, err := ioutil.TempDir("", "gts-run")
	if err != nil {
		panic(err)
	}

	path := filepath.Join(dir, "gettheshot-scrapers.yaml")
	yaml := fmt.Sprintf(testRunConfigYAML, serverUrl, serverUrl, filepath.Join(dir, "out"))
	if err := ioutil.WriteFile(path, []byte(yaml), 0644); err != nil {
		panic(err)
	}

	config, err := NewConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	return config, dir
}

func TestRunOnce(t *testing.T) {
	server := newUpstreamServer(t, "opaque-token")
	defer server.Close()

	config, dir := newRunConfig(t, server.URL)
	defer os.RemoveAll(dir)

	snapshot, err := runOnce(config, true)
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	if snapshot.Count != 1 || snapshot.Locations[0].Name != "Clinic A" || snapshot.Locations[0].Doses != 6 {
		t.Errorf("Expected a single Clinic A with 6 doses, got %+v", snapshot.Locations)
		return
	}

	body, err := ioutil.ReadFile(filepath.Join(config.DumpDir, config.OutputKey))
	if err != nil {
		t.Errorf("Expected published file, got %v", err)
		return
	}

	published := new(Snapshot)
	if err := json.Unmarshal(body, published); err != nil {
		t.Errorf("Expected snapshot JSON, got %v", err)
		return
	}

	if published.Count != 1 || published.Locations[0].Doses != 6 {
		t.Errorf("Unexpected published snapshot: %+v", published)
	}
}

func TestRunOnceTestMode(t *testing.T) {
	server := newUpstreamServer(t, "opaque-token")
	defer server.Close()

	config, dir := newRunConfig(t, server.URL)
	defer os.RemoveAll(dir)
	config.TestMode = true

	snapshot, err := runOnce(config, true)
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	if snapshot.Count != 1 {
		t.Errorf("Expected 1 location, got %d", snapshot.Count)
		return
	}

	if _, err := os.Stat(filepath.Join(config.DumpDir, config.OutputKey)); err == nil {
		t.Errorf("Expected nothing to be published in test mode")
	}
}

func TestRunOnceTokenUnavailable(t *testing.T) {
	server := newUpstreamServer(t, "")
	defer server.Close()

	config, dir := newRunConfig(t, server.URL)
	defer os.RemoveAll(dir)

	_, err := runOnce(config, true)
	if !errors.Is(err, ErrTokenUnavailable) {
		t.Errorf("Expected ErrTokenUnavailable, got %v", err)
	}
}

func TestRunOnceNowhereToPublish(t *testing.T) {
	server := newUpstreamServer(t, "opaque-token")
	defer server.Close()

	config, dir := newRunConfig(t, server.URL)
	defer os.RemoveAll(dir)
	config.DumpOutput = false
	config.OutputBucket = ""

	snapshot, err := runOnce(config, true)
	if err == nil {
		t.Errorf("Expected publish error, got nil")
		return
	}

	// the scan result survives a failed publish
	if snapshot == nil || snapshot.Count != 1 {
		t.Errorf("Expected the aggregated snapshot to be returned, got %+v", snapshot)
	}
}

func TestRunUsage(t *testing.T) {
	cases := [][]string{
		{},
		{"gettheshot-scrapers", "forever"},
	}

	for _, args := range cases {
		if err := Run(args); !errors.Is(err, ErrUsage) {
			t.Errorf("%v: Expected ErrUsage, got %v", args, err)
		}
	}
}
