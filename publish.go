package gts

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const DefaultOutputKey = "gettheshot-locations.json"
const JSONContentType = "application/json"

type Snapshot struct {
	Timestamp int64          `json:"stamp"`
	Count     int            `json:"count"`
	Locations []SearchResult `json:"locations"`
}

func NewSnapshot(aggregate *Aggregate, now time.Time) *Snapshot {
	snapshot := new(Snapshot)
	snapshot.Timestamp = now.Unix()
	snapshot.Locations = aggregate.Values()
	snapshot.Count = len(snapshot.Locations)

	return snapshot
}

func (s *Snapshot) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Publisher stores a snapshot somewhere and returns where it went
type Publisher interface {
	Publish(snapshot *Snapshot) (string, error)
}

type S3Publisher struct {
	Bucket string
	Key    string
	Region string
	Client S3ObjectPutter
}

func NewS3Publisher(bucket string, key string) (*S3Publisher, error) {
	client, region, err := getS3Client()
	if err != nil {
		return nil, err
	}

	return &S3Publisher{
		Bucket: bucket,
		Key:    key,
		Region: region,
		Client: client,
	}, nil
}

func (p *S3Publisher) Publish(snapshot *Snapshot) (string, error) {
	body, err := snapshot.Encode()
	if err != nil {
		return "", err
	}

	url, err := PutS3Object(p.Client, p.Region, p.Bucket, p.Key, JSONContentType, body)
	if err != nil {
		return "", fmt.Errorf("s3://%s/%s: %w", p.Bucket, p.Key, err)
	}

	Log.Debugf("Sent %d bytes to S3: %s", len(body), url)

	return url, nil
}

type FilePublisher struct {
	Dir string
	Key string
}

func (p *FilePublisher) Publish(snapshot *Snapshot) (string, error) {
	body, err := snapshot.Encode()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(p.Dir); err != nil {
		if err := os.MkdirAll(p.Dir, 0755); err != nil {
			return "", err
		}
	}

	filePath := filepath.Join(p.Dir, p.Key)
	if err := ioutil.WriteFile(filePath, body, 0644); err != nil {
		return "", err
	}

	Log.Debugf("Wrote %d bytes to file: %s", len(body), filePath)

	return filePath, nil
}

// MultiPublisher publishes to every publisher, even when one fails
type MultiPublisher []Publisher

func (mp MultiPublisher) Publish(snapshot *Snapshot) (string, error) {
	firstUrl := ""
	errStrings := make([]string, 0)

	for _, publisher := range mp {
		url, err := publisher.Publish(snapshot)
		if err != nil {
			errStrings = append(errStrings, err.Error())
			continue
		}

		if len(firstUrl) == 0 {
			firstUrl = url
		}
	}

	if len(errStrings) > 0 {
		return firstUrl, fmt.Errorf("publish failed: %s", strings.Join(errStrings, "; "))
	}

	return firstUrl, nil
}
