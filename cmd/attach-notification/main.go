package main

import (
	"os"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/config"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/logging"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/provisioning"
)

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadProvisioningFromEnv()
	if err != nil {
		logger.Fatalln(err)
	}

	sess := session.Must(session.NewSession())
	notifier := provisioning.NewBucketNotifier(s3.New(sess), cfg, logger)

	lambda.Start(cfn.LambdaWrap(notifier.Handle))
}
