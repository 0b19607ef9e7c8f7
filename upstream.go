package gts

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
	_ "time/tzdata"
)

const DefaultEligibilityUrl = "https://api.gettheshot.coronavirus.ohio.gov/public/eligibility"
const DefaultSearchUrl = "https://api.gettheshot.coronavirus.ohio.gov/public/locations/search"
const ScreeningPageUrl = "https://gettheshot.coronavirus.ohio.gov/screening"
const LocationSelectPageUrl = "https://gettheshot.coronavirus.ohio.gov/location-select"
const DefaultDoseNumber = 1
const DefaultSearchPool = "default"

// dates in search requests are in Ohio local time
const UpstreamTimeZone = "America/New_York"

type EligibilityAnswer struct {
	Id    string      `json:"id"`
	Value interface{} `json:"value,omitempty"`
	Type  string      `json:"type"`
}

type eligibilityRequest struct {
	Responses []EligibilityAnswer `json:"eligibilityQuestionResponse"`
	Url       string              `json:"url"`
}

type eligibilityResponse struct {
	VaccineData *string `json:"vaccineData"`
}

// answers to the screening questionnaire; booking for self, eligible,
// with the initial consent and vaccine acknowledgement checked
var DefaultEligibilityAnswers = []EligibilityAnswer{
	{Id: "q.screening.booking.on.behalf", Value: "No", Type: "single-select"},
	{Id: "q.screening.firstname", Type: "text"},
	{Id: "q.screening.lastname", Type: "text"},
	{Id: "q.ineligible.registration.email", Type: "email"},
	{Id: "q.screening.phonenumber", Type: "mobile-phone"},
	{Id: "q.screening.relation", Type: "single-select"},
	{Id: "q.screening.eligibility.question.1", Value: "Yes", Type: "single-select"},
	{Id: "q.screening.accessibility.code", Type: "text"},
	{Id: "q.screening.initialconsent", Value: []string{"consent.initial.text"}, Type: "multi-select"},
	{Id: "q.screening.acknowledge.vaccine", Value: []string{"acknowledgement.text"}, Type: "multi-select"},
}

// EligibilityClient fetches the opaque "vaccineData" token the search
// endpoint requires
type EligibilityClient struct {
	Url        string
	Answers    []EligibilityAnswer
	Timeout    int
	HttpClient *http.Client
}

func NewEligibilityClient(url string, timeout int, httpClient *http.Client) *EligibilityClient {
	client := new(EligibilityClient)
	client.Url = url
	client.Answers = DefaultEligibilityAnswers
	client.Timeout = timeout
	client.HttpClient = httpClient

	return client
}

func (c *EligibilityClient) Token() (string, error) {
	const op = "eligibility"

	reqBody, err := json.Marshal(eligibilityRequest{
		Responses: c.Answers,
		Url:       ScreeningPageUrl,
	})
	if err != nil {
		return "", newFetchError(FetchErrorParse, op, err)
	}

	endpoint := NewJSONPostEndpoint(c.Url, string(reqBody), c.Timeout)
	endpoint.HttpClient = c.HttpClient

	body, err := endpoint.Fetch(op)
	if err != nil {
		return "", classifyFetchError(op, err)
	}

	resp := eligibilityResponse{}
	if err = json.Unmarshal(body, &resp); err != nil {
		return "", newFetchError(FetchErrorParse, op, err)
	}

	if resp.VaccineData == nil || len(*resp.VaccineData) == 0 {
		return "", newFetchError(FetchErrorMissingField, op, fmt.Errorf("no vaccineData in response"))
	}

	return *resp.VaccineData, nil
}

type searchLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type searchLocationQuery struct {
	IncludePools []string `json:"includePools"`
}

type searchRequest struct {
	Location      searchLocation      `json:"location"`
	FromDate      string              `json:"fromDate"`
	LocationQuery searchLocationQuery `json:"locationQuery"`
	DoseNumber    int                 `json:"doseNumber"`
	Url           string              `json:"url"`
	VaccineData   string              `json:"vaccineData"`
}

// SearchClient runs one availability search per coordinate
type SearchClient struct {
	Url        string
	FromDate   string // yyyy-mm-dd, empty means today in Ohio
	DoseNumber int
	Timeout    int
	HttpClient *http.Client
	Cache      *ResponseCache
	CacheTTL   time.Duration
	now        func() time.Time
}

func NewSearchClient(url string, timeout int, httpClient *http.Client) *SearchClient {
	client := new(SearchClient)
	client.Url = url
	client.DoseNumber = DefaultDoseNumber
	client.Timeout = timeout
	client.HttpClient = httpClient
	client.now = time.Now

	return client
}

func (c *SearchClient) fromDate() string {
	if len(c.FromDate) > 0 {
		return c.FromDate
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}

	loc, err := time.LoadLocation(UpstreamTimeZone)
	if err != nil {
		Log.Warnf("Could not load time zone %s, using UTC: %v", UpstreamTimeZone, err)
		loc = time.UTC
	}

	return now().In(loc).Format("2006-01-02")
}

// Search returns the raw location records near coord. A response with a
// null "locations" value is an empty result; a missing field is an error.
func (c *SearchClient) Search(token string, coord Coordinate) ([]RawLocation, error) {
	op := fmt.Sprintf("search (%s)", coord)

	reqBody, err := json.Marshal(searchRequest{
		Location: searchLocation{
			Lat: coord.Lat,
			Lng: coord.Lng,
		},
		FromDate: c.fromDate(),
		LocationQuery: searchLocationQuery{
			IncludePools: []string{DefaultSearchPool},
		},
		DoseNumber:  c.DoseNumber,
		Url:         LocationSelectPageUrl,
		VaccineData: token,
	})
	if err != nil {
		return nil, newFetchError(FetchErrorParse, op, err)
	}

	endpoint := NewJSONPostEndpoint(c.Url, string(reqBody), c.Timeout)
	endpoint.HttpClient = c.HttpClient
	endpoint.Cache = c.Cache
	endpoint.CacheTTL = c.CacheTTL

	body, _, err := endpoint.FetchCached(op)
	if err != nil {
		return nil, classifyFetchError(op, err)
	}

	return parseSearchResponse(op, body)
}

func parseSearchResponse(op string, body []byte) ([]RawLocation, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, newFetchError(FetchErrorParse, op, err)
	}

	rawLocations, exists := fields["locations"]
	if !exists {
		return nil, newFetchError(FetchErrorMissingField, op, fmt.Errorf("no locations in response"))
	}

	locations := make([]RawLocation, 0)
	if string(rawLocations) == "null" {
		return locations, nil
	}

	if err := json.Unmarshal(rawLocations, &locations); err != nil {
		return nil, newFetchError(FetchErrorParse, op, err)
	}

	return locations, nil
}

func classifyFetchError(op string, err error) error {
	var statusErr *StatusCodeError
	if errors.As(err, &statusErr) {
		return newFetchError(FetchErrorStatus, op, err)
	}

	return newFetchError(FetchErrorNetwork, op, err)
}
