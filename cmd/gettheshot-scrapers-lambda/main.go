package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"

	gts "github.com/CovidOH/gettheshot-scrapers/golang"
)

// AWS Lambda wrapper

type ScanEvent struct {
	Name string `json:"name"`
}

func RunWithPanicTrap() (err error) {
	//trap any panic and return it as an error
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = rerr
			} else if str, ok := r.(string); ok {
				err = errors.New(str)
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()

	//hard code arguments to a single pass
	args := []string{gts.LambdaExeName, "once"}
	return gts.Run(args)
}

func HandleRequest(ctx context.Context, evt ScanEvent) (string, error) {
	if err := RunWithPanicTrap(); err != nil {
		return fmt.Sprintf("Execution finished with error: %s!", evt.Name), err
	}

	return fmt.Sprintf("Execution finished: %s!", evt.Name), nil
}

func main() {
	lambda.Start(HandleRequest)
}
