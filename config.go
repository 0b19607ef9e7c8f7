package gts

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const DefaultConfigPath = "./gettheshot-scrapers.yaml"
const ConfigPathEnvName = "GTS_CONFIG"
const OutputBucketEnvName = "GTS_OUTPUT_BUCKET"
const OutputBucketAWSName = "gettheshot-output-bucket"

const DefaultDumpDir = "./out"
const MaxScanDelaySeconds = 60

type Config struct {
	Debug             bool              `yaml:"debug"`
	TestMode          bool              `yaml:"test_mode"`
	UseParameterStore bool              `yaml:"use_parameter_store"`
	EligibilityUrl    string            `yaml:"eligibility_url"`
	SearchUrl         string            `yaml:"search_url"`
	FromDate          string            `yaml:"from_date"`
	DoseNumber        int               `yaml:"dose_number"`
	RequestTimeout    int               `yaml:"request_timeout"`
	SearchCacheTTL    int64             `yaml:"search_cache_ttl"`
	ProxyUrl          string            `yaml:"proxy_url"`
	ScanTargetsPath   string            `yaml:"scan_targets_path"`
	ScanTargets       []ScanTargetEntry `yaml:"scan_targets"`
	Cutoff            int               `yaml:"cutoff"`
	ScanDelay         *int              `yaml:"scan_delay"`
	Appointments      ApptSettings      `yaml:"appointments"`
	OutputBucket      string            `yaml:"output_bucket"`
	OutputKey         string            `yaml:"output_key"`
	DumpOutput        bool              `yaml:"dump_output"`
	DumpDir           string            `yaml:"dump_dir"`
}

// ApptSettings is the yaml form of ApptConfig. nil means not configured, so an
// explicit doses_per_appt: 0 is kept.
type ApptSettings struct {
	ApptMinutes  *int `yaml:"appt_minutes"`
	DosesPerAppt *int `yaml:"doses_per_appt"`
}

// ApptConfig returns the settings with defaults for anything not configured
func (s ApptSettings) ApptConfig() ApptConfig {
	appt := DefaultApptConfig()
	if s.ApptMinutes != nil {
		appt.ApptMinutes = *s.ApptMinutes
	}
	if s.DosesPerAppt != nil {
		appt.DosesPerAppt = *s.DosesPerAppt
	}

	return appt
}

func NewConfigDefaultPath() (*Config, error) {
	// .env is optional, only used for local runs
	if err := godotenv.Load(); err == nil {
		Log.Debugf("Loaded environment from .env")
	}

	configPath := os.Getenv(ConfigPathEnvName)
	if len(configPath) == 0 {
		configPath = DefaultConfigPath
	}

	return NewConfig(configPath)
}

func NewConfig(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := &Config{}
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("%s: %v", configPath, err)
	}

	SetDebug(config.Debug)

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %v", configPath, err)
	}

	config.resolveOutputBucket(configPath)
	config.resolveProxyUrl()

	Log.Debugf("Eligibility URL: %s", config.EligibilityUrl)
	Log.Debugf("Search URL: %s", config.SearchUrl)

	return config, nil
}

func (config *Config) applyDefaults() {
	if len(config.EligibilityUrl) == 0 {
		config.EligibilityUrl = DefaultEligibilityUrl
	}

	if len(config.SearchUrl) == 0 {
		config.SearchUrl = DefaultSearchUrl
	}

	if config.DoseNumber == 0 {
		config.DoseNumber = DefaultDoseNumber
	}

	if config.RequestTimeout == 0 {
		config.RequestTimeout = EndpointDefaultTimeout
	}

	if config.ScanDelay == nil {
		delay := int(DefaultScanDelay / time.Second)
		config.ScanDelay = &delay
	}

	if config.Appointments.ApptMinutes == nil {
		apptMinutes := DefaultApptMinutes
		config.Appointments.ApptMinutes = &apptMinutes
	}

	if config.Appointments.DosesPerAppt == nil {
		dosesPerAppt := DefaultDosesPerAppt
		config.Appointments.DosesPerAppt = &dosesPerAppt
	}

	if len(config.OutputKey) == 0 {
		config.OutputKey = DefaultOutputKey
	}

	if len(config.DumpDir) == 0 {
		config.DumpDir = DefaultDumpDir
	}
}

func (config *Config) Validate() error {
	if config.ScanDelay != nil && (*config.ScanDelay < 0 || *config.ScanDelay > MaxScanDelaySeconds) {
		return fmt.Errorf("Scan delay must be between 0 and %d seconds, configured: %d", MaxScanDelaySeconds, *config.ScanDelay)
	}

	appt := config.Appointments.ApptConfig()
	if appt.ApptMinutes <= 0 {
		return fmt.Errorf("Appointment length must be positive, configured: %d", appt.ApptMinutes)
	}

	if appt.DosesPerAppt < 0 {
		return fmt.Errorf("Doses per appointment can't be negative, configured: %d", appt.DosesPerAppt)
	}

	if config.Cutoff < 0 {
		return fmt.Errorf("Cutoff can't be negative, configured: %d", config.Cutoff)
	}

	if config.RequestTimeout < 0 {
		return fmt.Errorf("Request timeout can't be negative, configured: %d", config.RequestTimeout)
	}

	if len(config.ScanTargets) > 0 {
		if err := ValidateScanTargetEntries(config.ScanTargets); err != nil {
			return fmt.Errorf("scan_targets: %v", err)
		}
	}

	if len(config.FromDate) > 0 {
		if _, err := time.Parse("2006-01-02", config.FromDate); err != nil {
			return fmt.Errorf("from_date must be yyyy-mm-dd, configured: %s", config.FromDate)
		}
	}

	return nil
}

func (config *Config) ScanDelayDuration() time.Duration {
	if config.ScanDelay == nil {
		return DefaultScanDelay
	}

	return time.Duration(*config.ScanDelay) * time.Second
}

// yaml, then env, then parameter store
func (config *Config) resolveOutputBucket(configPath string) {
	if len(config.OutputBucket) > 0 {
		Log.Debugf("Output bucket found in %s", configPath)
		return
	}

	config.OutputBucket = os.Getenv(OutputBucketEnvName)
	if len(config.OutputBucket) > 0 {
		Log.Debugf("Output bucket found in environment variable %s", OutputBucketEnvName)
		return
	}

	if !config.UseParameterStore {
		return
	}

	var err error
	config.OutputBucket, err = GetAWSParameter(OutputBucketAWSName, false)
	if err != nil {
		Log.Errorf("Could not get output bucket from AWS: %v", err)
		return
	}

	Log.Debugf("Output bucket found in AWS parameter '%s'", OutputBucketAWSName)
}

func (config *Config) resolveProxyUrl() {
	if len(config.ProxyUrl) > 0 {
		return
	}

	config.ProxyUrl = os.Getenv(ProxyUrlEnvName)
	if len(config.ProxyUrl) > 0 || !config.UseParameterStore {
		return
	}

	var err error
	config.ProxyUrl, err = GetAWSEncryptedParameter(ProxyUrlAWSParameterName)
	if err != nil {
		// proxy is optional
		Log.Debugf("No proxy in AWS parameter '%s': %v", ProxyUrlAWSParameterName, err)
		config.ProxyUrl = ""
	}
}

// AllScanTargets returns the inline targets followed by the ones in
// scan_targets_path
func (config *Config) AllScanTargets() ([]ScanTarget, error) {
	targets := make([]ScanTarget, 0, len(config.ScanTargets))
	for _, t := range config.ScanTargets {
		targets = append(targets, t.toScanTarget())
	}

	if len(config.ScanTargetsPath) > 0 {
		fromFile, err := LoadScanTargets(config.ScanTargetsPath)
		if err != nil {
			return nil, err
		}
		targets = append(targets, fromFile...)
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("No scan targets configured: set scan_targets or scan_targets_path")
	}

	return targets, nil
}
