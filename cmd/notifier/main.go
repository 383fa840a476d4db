package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/connect"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/sirupsen/logrus"

	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/config"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/directory"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/logging"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/mailer"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/notifier"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/storage"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logging.New(config.DefaultLogLevel).Fatalln(err)
	}
	logger := logging.New(cfg.LogLevel)

	h, err := newHandler(cfg, logger)
	if err != nil {
		logger.Fatalln(err)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		lambda.Start(h.HandleLambdaEvent)
		return
	}

	if err := newRootCommand(h).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newHandler(cfg config.Config, logger *logrus.Logger) (*notifier.Handler, error) {
	awsCfg := aws.NewConfig()
	if cfg.Region != "" {
		awsCfg = awsCfg.WithRegion(cfg.Region)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	store := storage.NewClient(s3.New(sess))
	dir := directory.NewClient(connect.New(sess), cfg.RoleTagKey)
	mail, err := mailer.New(ses.New(sess), dir, logger)
	if err != nil {
		return nil, err
	}

	engine := notifier.NewEngine(store, dir, mail, cfg, logger)

	return notifier.NewHandler(engine, store, logger), nil
}
