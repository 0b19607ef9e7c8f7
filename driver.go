package gts

import (
	"errors"
	"fmt"
	"time"
)

const DefaultScanDelay = 2 * time.Second

var ErrTokenUnavailable = errors.New("eligibility token unavailable")

type DriverState string

const (
	StateIdle          DriverState = "Idle"
	StateFetchingToken DriverState = "FetchingToken"
	StateTokenFailed   DriverState = "TokenFailed"
	StateScanning      DriverState = "Scanning"
	StateDone          DriverState = "Done"
)

type TokenSource interface {
	Token() (string, error)
}

type Searcher interface {
	Search(token string, coord Coordinate) ([]RawLocation, error)
}

// Driver scans targets one at a time, in order, and aggregates the results
type Driver struct {
	Tokens   TokenSource
	Searcher Searcher
	Appt     ApptConfig
	Cutoff   int // stop once more than Cutoff locations are aggregated, 0 disables
	Delay    time.Duration
	Sleep    func(time.Duration)

	state DriverState
}

func NewDriver(tokens TokenSource, searcher Searcher, appt ApptConfig) *Driver {
	driver := new(Driver)
	driver.Tokens = tokens
	driver.Searcher = searcher
	driver.Appt = appt
	driver.Delay = DefaultScanDelay
	driver.Sleep = time.Sleep
	driver.state = StateIdle

	return driver
}

func (d *Driver) State() DriverState {
	if len(d.state) == 0 {
		return StateIdle
	}

	return d.state
}

// Run fetches a token and scans all targets. Without a token nothing is
// scanned and ErrTokenUnavailable is returned.
func (d *Driver) Run(targets []ScanTarget) (*Aggregate, error) {
	d.state = StateFetchingToken

	token, err := d.Tokens.Token()
	if err == nil && len(token) == 0 {
		err = fmt.Errorf("empty token")
	}

	if err != nil {
		d.state = StateTokenFailed
		return nil, fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}

	return d.Scan(token, targets), nil
}

func (d *Driver) Scan(token string, targets []ScanTarget) *Aggregate {
	d.state = StateScanning
	aggregate := NewAggregate()

	sleep := d.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for idx, target := range targets {
		d.scanTarget(token, target, aggregate)

		if d.Cutoff > 0 && aggregate.Len() > d.Cutoff {
			Log.Infof("Found %d locations, over cutoff of %d, skipping %d remaining target(s)", aggregate.Len(), d.Cutoff, len(targets)-idx-1)
			break
		}

		if idx < len(targets)-1 && d.Delay > 0 {
			sleep(d.Delay)
		}
	}

	d.state = StateDone
	Log.Infof("Scan finished with %d unique locations", aggregate.Len())

	return aggregate
}

func (d *Driver) scanTarget(token string, target ScanTarget, aggregate *Aggregate) {
	locations, err := d.Searcher.Search(token, target.Coordinate)
	if err != nil {
		Log.Errorf("%s: %v", target.Zipcode, err)
		return
	}

	Log.Debugf("%s: %d location(s) near %s", target.Zipcode, len(locations), target.Coordinate)

	for _, raw := range locations {
		result, err := Normalize(raw, d.Appt)
		if err != nil {
			Log.Warnf("%s: skipping location: %v", target.Zipcode, err)
			continue
		}

		aggregate.Insert(result)
	}
}
