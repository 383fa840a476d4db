package main

import (
	"os"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/connect"

	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/logging"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/provisioning"
)

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"))
	sess := session.Must(session.NewSession())
	forms := provisioning.NewFormCreator(connect.New(sess), logger)

	lambda.Start(cfn.LambdaWrap(forms.Handle))
}
