package gts

//utility functions for aws

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

//check if any credentials are available in the environment
func HasAWSCredentials() bool {
	awsConfig, err := LoadAWSConfig()
	return err == nil && awsConfig.Credentials != nil && len(awsConfig.Region) > 0
}

var awsConfigMutex *sync.Mutex = &sync.Mutex{}
var loadedAWSConfig *aws.Config

func LoadAWSConfig() (*aws.Config, error) {
	awsConfigMutex.Lock()
	defer awsConfigMutex.Unlock()

	if loadedAWSConfig == nil {
		load, err := awsconfig.LoadDefaultConfig(context.TODO())
		if err != nil {
			loadedAWSConfig = nil
			return nil, err
		}

		loadedAWSConfig = &load
	}

	return loadedAWSConfig, nil
}

func GetAWSEncryptedParameter(name string) (string, error) {
	return GetAWSParameter(name, true)
}

//get value from parameter store (aws systems manager)
func GetAWSParameter(name string, encrypted bool) (string, error) {
	cfg, err := LoadAWSConfig()
	if err != nil {
		return "", err
	}

	client := ssm.NewFromConfig(*cfg)

	output, err := client.GetParameter(context.TODO(), &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: encrypted})
	if err != nil {
		return "", err
	}

	if output.Parameter == nil || output.Parameter.Value == nil {
		return "", fmt.Errorf("AWS parameter '%s' has no value", name)
	}

	return *output.Parameter.Value, nil
}

// S3ObjectPutter is the subset of the s3 client used for publishing
type S3ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var s3mutex *sync.Mutex = &sync.Mutex{}
var s3client *s3.Client //singleton

func getS3Client() (*s3.Client, string, error) {
	s3mutex.Lock()
	defer s3mutex.Unlock()

	cfg, err := LoadAWSConfig()
	if err != nil {
		return nil, "", err
	}

	if s3client == nil {
		s3client = s3.NewFromConfig(*cfg)
	}

	return s3client, cfg.Region, nil
}

func PutS3Object(client S3ObjectPutter, region string, bucketName string, key string, contentType string, body []byte) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body)}

	if len(contentType) > 0 {
		input.ContentType = aws.String(contentType)
	}

	_, err := client.PutObject(context.TODO(), input)
	if err != nil {
		return "", err
	}

	return S3ObjectUrl(bucketName, region, key), nil
}

func S3ObjectUrl(bucketName string, region string, key string) string {
	return fmt.Sprintf("https://%s.s3-%s.amazonaws.com/%s", bucketName, region, key)
}
