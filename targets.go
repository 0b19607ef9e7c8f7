package gts

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lng)
}

// ScanTarget is a point to search around. Zipcode is only a label.
type ScanTarget struct {
	Zipcode    string
	Coordinate Coordinate
}

// ScanTargetEntry is a scan target as written in a targets file or inline
// in the config
type ScanTargetEntry struct {
	Zipcode string  `json:"zipcode" yaml:"zipcode"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
}

func (t ScanTargetEntry) toScanTarget() ScanTarget {
	return ScanTarget{
		Zipcode: t.Zipcode,
		Coordinate: Coordinate{
			Lat: t.Lat,
			Lng: t.Lng,
		},
	}
}

const scanTargetsSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-04/schema#",
	"type": "array",
	"items": {
		"type": "object",
		"required": [ "zipcode", "lat", "lng" ],
		"properties": {
			"zipcode": {
				"type": "string",
				"minLength": 1
			},
			"lat": {
				"type": "number",
				"minimum": -90.0,
				"maximum": 90.0
			},
			"lng": {
				"type": "number",
				"minimum": -180.0,
				"maximum": 180.0
			}
		}
	}
}`

var scanTargetsSchema = mustCompileSchema(scanTargetsSchemaJSON)

func mustCompileSchema(schemaJSON string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Errorf("Error initializing schema: %v", err))
	}

	return schema
}

func validateScanTargets(loader gojsonschema.JSONLoader) error {
	result, err := scanTargetsSchema.Validate(loader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		errStrings := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			errStrings = append(errStrings, e.String())
		}
		return fmt.Errorf("Invalid scan targets: [%s]", strings.Join(errStrings, ", "))
	}

	return nil
}

// ValidateScanTargetEntries checks already decoded entries against the same
// schema as targets files
func ValidateScanTargetEntries(entries []ScanTargetEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	return validateScanTargets(gojsonschema.NewBytesLoader(data))
}

// ParseScanTargets validates and decodes a JSON array of
// {"zipcode", "lat", "lng"} objects, keeping input order
func ParseScanTargets(data []byte) ([]ScanTarget, error) {
	if err := validateScanTargets(gojsonschema.NewBytesLoader(data)); err != nil {
		return nil, err
	}

	var decoded []ScanTargetEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	targets := make([]ScanTarget, 0, len(decoded))
	for _, t := range decoded {
		targets = append(targets, t.toScanTarget())
	}

	return targets, nil
}

func LoadScanTargets(path string) ([]ScanTarget, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	targets, err := ParseScanTargets(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}

	Log.Debugf("Loaded %d scan targets from %s", len(targets), path)

	return targets, nil
}
