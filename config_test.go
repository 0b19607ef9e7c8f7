package gts

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const TestConfigYAML = `debug: false
search_url: "http://localhost:9999/search"
cutoff: 25
scan_delay: 0
from_date: "2021-04-07"
output_bucket: "gts-bucket"
proxy_url: "http://proxy.example.com:8080"
scan_targets:
  - zipcode: "43215"
    lat: 39.96
    lng: -83.0
appointments:
  appt_minutes: 15
`

func writeTestConfig(t *testing.T, contents string) string {
	dir, err := ioutil.TempDir("", "gts-config")
	if err != nil {
		panic(err)
	}

	path := filepath.Join(dir, "gettheshot-scrapers.yaml")
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		panic(err)
	}

	return path
}

func TestNewConfig(t *testing.T) {
	path := writeTestConfig(t, TestConfigYAML)
	defer os.RemoveAll(filepath.Dir(path))

	config, err := NewConfig(path)
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	if config.SearchUrl != "http://localhost:9999/search" {
		t.Errorf("Expected configured search url, got %s", config.SearchUrl)
		return
	}

	if config.EligibilityUrl != DefaultEligibilityUrl {
		t.Errorf("Expected default eligibility url, got %s", config.EligibilityUrl)
		return
	}

	if config.ScanDelayDuration() != 0 {
		t.Errorf("Expected explicit zero delay, got %v", config.ScanDelayDuration())
		return
	}

	if appt := config.Appointments.ApptConfig(); appt.ApptMinutes != 15 || appt.DosesPerAppt != DefaultDosesPerAppt {
		t.Errorf("Unexpected appointment config: %+v", appt)
		return
	}

	if config.Cutoff != 25 || config.OutputBucket != "gts-bucket" || config.OutputKey != DefaultOutputKey {
		t.Errorf("Unexpected config: %+v", config)
		return
	}

	targets, err := config.AllScanTargets()
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	if len(targets) != 1 || targets[0].Zipcode != "43215" || targets[0].Coordinate.Lat != 39.96 {
		t.Errorf("Expected inline target, got %v", targets)
		return
	}
}

func TestNewConfigDefaults(t *testing.T) {
	path := writeTestConfig(t, "proxy_url: \"http://proxy.example.com:8080\"\n")
	defer os.RemoveAll(filepath.Dir(path))

	config, err := NewConfig(path)
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	if config.ScanDelayDuration() != 2*time.Second {
		t.Errorf("Expected 2s default delay, got %v", config.ScanDelayDuration())
		return
	}

	if appt := config.Appointments.ApptConfig(); appt != DefaultApptConfig() {
		t.Errorf("Expected default appointment config, got %+v", appt)
		return
	}

	if config.SearchUrl != DefaultSearchUrl || config.DoseNumber != DefaultDoseNumber || config.RequestTimeout != EndpointDefaultTimeout {
		t.Errorf("Expected defaults, got %+v", config)
		return
	}

	if _, err := config.AllScanTargets(); err == nil {
		t.Errorf("Expected error without scan targets, got nil")
	}
}

func TestNewConfigInvalid(t *testing.T) {
	cases := []string{
		"scan_delay: 120\n",
		"cutoff: -1\n",
		"appointments:\n  appt_minutes: -30\n",
		"appointments:\n  appt_minutes: 0\n",
		"appointments:\n  doses_per_appt: -1\n",
		"from_date: \"April 7\"\n",
		"scan_targets:\n  - zipcode: \"1\"\n    lat: 95\n    lng: 0\n",
		"scan_targets:\n  - zipcode: \"\"\n    lat: 40\n    lng: -83\n",
		"scan_targets:\n  - lat: 40\n    lng: -83\n",
		"debug: [\n",
	}

	for _, c := range cases {
		path := writeTestConfig(t, c)

		if _, err := NewConfig(path); err == nil {
			t.Errorf("%q: Expected error, got nil", c)
		}

		os.RemoveAll(filepath.Dir(path))
	}
}

func TestOutputBucketFromEnv(t *testing.T) {
	path := writeTestConfig(t, "proxy_url: \"http://proxy.example.com:8080\"\n")
	defer os.RemoveAll(filepath.Dir(path))

	os.Setenv(OutputBucketEnvName, "env-bucket")
	defer os.Unsetenv(OutputBucketEnvName)

	config, err := NewConfig(path)
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	if config.OutputBucket != "env-bucket" {
		t.Errorf("Expected bucket from %s, got '%s'", OutputBucketEnvName, config.OutputBucket)
	}
}

func TestNewConfigZeroDosesPerAppt(t *testing.T) {
	path := writeTestConfig(t, "appointments:\n  appt_minutes: 30\n  doses_per_appt: 0\n")
	defer os.RemoveAll(filepath.Dir(path))

	config, err := NewConfig(path)
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	appt := config.Appointments.ApptConfig()
	if appt.DosesPerAppt != 0 || appt.ApptMinutes != 30 {
		t.Errorf("Expected explicit zero doses per appointment to be kept, got %+v", appt)
		return
	}

	windows := []OpenHourWindow{{Days: []time.Weekday{time.Monday}, LocalStart: 9 * 60, LocalEnd: 12 * 60}}
	if doses := EstimateDoses(windows, appt); doses != 0 {
		t.Errorf("Expected 0 doses, got %d", doses)
	}
}

func TestAllScanTargetsInlineThenFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "gts-targets")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	targetsPath := filepath.Join(dir, "scan_targets.json")
	targetsJSON := `[
		{"zipcode": "44101", "lat": 41.5, "lng": -81.69},
		{"zipcode": "45202", "lat": 39.1, "lng": -84.51}
	]`
	if err := ioutil.WriteFile(targetsPath, []byte(targetsJSON), 0644); err != nil {
		panic(err)
	}

	path := filepath.Join(dir, "gettheshot-scrapers.yaml")
	yaml := "scan_targets_path: \"" + targetsPath + "\"\n" +
		"scan_targets:\n" +
		"  - zipcode: \"43215\"\n    lat: 39.96\n    lng: -83.0\n" +
		"  - zipcode: \"43952\"\n    lat: 40.44\n    lng: -80.78\n"
	if err := ioutil.WriteFile(path, []byte(yaml), 0644); err != nil {
		panic(err)
	}

	config, err := NewConfig(path)
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	targets, err := config.AllScanTargets()
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	expected := []string{"43215", "43952", "44101", "45202"}
	if len(targets) != len(expected) {
		t.Errorf("Expected %d targets, got %v", len(expected), targets)
		return
	}

	for idx, zipcode := range expected {
		if targets[idx].Zipcode != zipcode {
			t.Errorf("Expected %s at position %d, got %s", zipcode, idx, targets[idx].Zipcode)
			return
		}
	}

	if targets[2].Coordinate != (Coordinate{Lat: 41.5, Lng: -81.69}) {
		t.Errorf("Expected file coordinate, got %s", targets[2].Coordinate)
	}
}

func TestValidateWithoutDefaults(t *testing.T) {
	config := &Config{}
	if err := config.Validate(); err != nil {
		t.Errorf("Expected nil error for an unset config, got %v", err)
	}
}
