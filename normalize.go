package gts

import (
	"errors"
	"fmt"
	"time"
)

// upstream uses the literal string "null" for missing dates
const NullSentinel = "null"

var ErrMalformedLocation = errors.New("malformed location record")

type RawOpenHours struct {
	Days       []string `json:"days"`
	LocalStart string   `json:"localStart"`
	LocalEnd   string   `json:"localEnd"`
}

// RawLocation is a single entry of the "locations" array in a search response
type RawLocation struct {
	Name           *string        `json:"name"`
	DisplayAddress *string        `json:"displayAddress"`
	StartDate      *string        `json:"startDate"`
	EndDate        *string        `json:"endDate"`
	ExternalUrl    *string        `json:"externalURL"`
	OpenHours      []RawOpenHours `json:"openHours"`
}

// SearchResult is a normalized location, keyed by Name
type SearchResult struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Start   *string `json:"start"`
	End     *string `json:"end"`
	Doses   int     `json:"doses"`
	Url     *string `json:"url"`
}

func nullableDate(raw *string) *string {
	if raw == nil || *raw == NullSentinel {
		return nil
	}

	value := *raw
	return &value
}

func (oh RawOpenHours) parse() (OpenHourWindow, error) {
	window := OpenHourWindow{
		Days: make([]time.Weekday, 0, len(oh.Days)),
	}

	for _, dayStr := range oh.Days {
		day, err := ParseWeekday(dayStr)
		if err != nil {
			return window, err
		}
		window.Days = append(window.Days, day)
	}

	var err error
	if window.LocalStart, err = ParseTimeOfDay(oh.LocalStart); err != nil {
		return window, err
	}

	if window.LocalEnd, err = ParseTimeOfDay(oh.LocalEnd); err != nil {
		return window, err
	}

	return window, nil
}

// Normalize maps a raw upstream record to a SearchResult
func Normalize(raw RawLocation, appt ApptConfig) (SearchResult, error) {
	var result SearchResult

	if raw.Name == nil {
		return result, fmt.Errorf("%w: missing name", ErrMalformedLocation)
	}

	if raw.DisplayAddress == nil {
		return result, fmt.Errorf("%w: %s: missing displayAddress", ErrMalformedLocation, *raw.Name)
	}

	windows := make([]OpenHourWindow, 0, len(raw.OpenHours))
	for _, openHours := range raw.OpenHours {
		window, err := openHours.parse()
		if err != nil {
			return result, fmt.Errorf("%w: %s: %v", ErrMalformedLocation, *raw.Name, err)
		}
		windows = append(windows, window)
	}

	result.Name = *raw.Name
	result.Address = *raw.DisplayAddress
	result.Start = nullableDate(raw.StartDate)
	result.End = nullableDate(raw.EndDate)
	result.Doses = EstimateDoses(windows, appt)

	if raw.ExternalUrl != nil {
		url := *raw.ExternalUrl
		result.Url = &url
	}

	return result, nil
}
