package gts

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const LambdaExeName = "gettheshot-scrapers-lambda"

var ErrUsage = errors.New("usage: once | dry")

// Run loads the configuration and runs a single scan pass. args follows
// os.Args: the executable name, then "once" or "dry".
func Run(args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	mode := "once"
	if len(args) > 1 {
		mode = args[1]
	}

	if mode != "once" && mode != "dry" {
		printUsage(args)
		return fmt.Errorf("%w: unknown mode '%s'", ErrUsage, mode)
	}

	config, err := NewConfigDefaultPath()
	if err != nil {
		Log.Errorf("Can't read config: %v", err)
		return err
	}

	if filepath.Base(args[0]) == LambdaExeName {
		//never write local files on lambda
		config.DumpOutput = false
	}

	switch mode {
	case "once":
		_, err = runOnce(config, true)
	case "dry":
		var snapshot *Snapshot
		snapshot, err = runOnce(config, false)
		if err == nil {
			var body []byte
			body, err = snapshot.Encode()
			if err == nil {
				fmt.Println(string(body))
			}
		}
	}

	return err
}

func runOnce(config *Config, publish bool) (*Snapshot, error) {
	targets, err := config.AllScanTargets()
	if err != nil {
		return nil, err
	}

	httpClient, err := newUpstreamHttpClient(config)
	if err != nil {
		return nil, err
	}

	eligibility := NewEligibilityClient(config.EligibilityUrl, config.RequestTimeout, httpClient)

	search := NewSearchClient(config.SearchUrl, config.RequestTimeout, httpClient)
	search.FromDate = config.FromDate
	search.DoseNumber = config.DoseNumber
	if config.SearchCacheTTL > 0 {
		search.Cache = NewResponseCache()
		search.CacheTTL = time.Duration(config.SearchCacheTTL) * time.Second
	}

	driver := NewDriver(eligibility, search, config.Appointments.ApptConfig())
	driver.Cutoff = config.Cutoff
	driver.Delay = config.ScanDelayDuration()

	Log.Infof("Scanning %d target(s)...", len(targets))

	aggregate, err := driver.Run(targets)
	if err != nil {
		Log.Errorf("%v", err)
		return nil, err
	}

	snapshot := NewSnapshot(aggregate, time.Now())

	if !publish || config.TestMode {
		Log.Infof("(silent) %d location(s), not publishing", snapshot.Count)
		return snapshot, nil
	}

	publisher, err := newPublisher(config)
	if err != nil {
		Log.Errorf("%v", err)
		return snapshot, err
	}

	url, err := publisher.Publish(snapshot)
	if err != nil {
		Log.Errorf("%v", err)
		return snapshot, err
	}

	Log.Infof("Published %d location(s) to %s", snapshot.Count, url)

	return snapshot, nil
}

// nil means use the endpoint default client
func newUpstreamHttpClient(config *Config) (*http.Client, error) {
	if len(config.ProxyUrl) == 0 {
		return nil, nil
	}

	proxy, err := NewProxyEndpoint(config.ProxyUrl)
	if err != nil {
		return nil, err
	}

	Log.Infof("Using proxy: %s", proxy)

	return proxy.GetHttpClient(time.Duration(config.RequestTimeout) * time.Second), nil
}

func newPublisher(config *Config) (Publisher, error) {
	publishers := make(MultiPublisher, 0)

	if len(config.OutputBucket) > 0 {
		if !HasAWSCredentials() {
			return nil, fmt.Errorf("Output bucket %s configured but no AWS credentials were found", config.OutputBucket)
		}

		s3Publisher, err := NewS3Publisher(config.OutputBucket, config.OutputKey)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, s3Publisher)
	}

	if config.DumpOutput {
		publishers = append(publishers, &FilePublisher{
			Dir: config.DumpDir,
			Key: config.OutputKey,
		})
	}

	if len(publishers) == 0 {
		return nil, fmt.Errorf("Nowhere to publish: configure output_bucket or dump_output")
	}

	return publishers, nil
}

func printUsage(args []string) {
	exeName := filepath.Base(args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s once | dry\n", exeName)
}
