// Package provisioning implements the CloudFormation custom resources that
// prepare an Amazon Connect instance and its export bucket for notifications.
package provisioning

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/config"
)

const (
	notificationID     = "evaluation-notification"
	objectCreatedEvent = "s3:ObjectCreated:Put"
	evaluationSuffix   = ".json"
)

type BucketNotificationAPI interface {
	PutBucketNotificationConfigurationWithContext(ctx aws.Context, input *s3.PutBucketNotificationConfigurationInput, opts ...request.Option) (*s3.PutBucketNotificationConfigurationOutput, error)
}

type BucketNotifier struct {
	s3Client BucketNotificationAPI
	cfg      config.ProvisioningConfig
	logger   logrus.FieldLogger
}

func NewBucketNotifier(s3Client BucketNotificationAPI, cfg config.ProvisioningConfig, logger logrus.FieldLogger) *BucketNotifier {
	return &BucketNotifier{s3Client: s3Client, cfg: cfg, logger: logger}
}

// Handle is a cfn.CustomResourceFunction. Only Create changes the bucket;
// Update and Delete are acknowledged as-is.
func (b *BucketNotifier) Handle(ctx context.Context, event cfn.Event) (string, map[string]interface{}, error) {
	log := b.logger.WithFields(logrus.Fields{"request_type": event.RequestType, "bucket": b.cfg.EvaluationBucket})
	physicalID := event.PhysicalResourceID
	if physicalID == "" {
		physicalID = notificationID + "-" + b.cfg.EvaluationBucket
	}

	if event.RequestType != cfn.RequestCreate {
		log.Info("no bucket notification change requested")
		return physicalID, map[string]interface{}{"Message": "Success"}, nil
	}

	input := b.notificationInput()
	log.WithField("prefix", b.cfg.EvaluationLocation).Info("attaching evaluation notification to bucket")
	if _, err := b.s3Client.PutBucketNotificationConfigurationWithContext(ctx, input); err != nil {
		log.WithError(err).Error("error attaching bucket notification")
		return physicalID, nil, fmt.Errorf("put bucket notification on %s: %w", b.cfg.EvaluationBucket, err)
	}

	return physicalID, map[string]interface{}{"Message": "Success"}, nil
}

func (b *BucketNotifier) notificationInput() *s3.PutBucketNotificationConfigurationInput {
	return &s3.PutBucketNotificationConfigurationInput{
		Bucket: aws.String(b.cfg.EvaluationBucket),
		NotificationConfiguration: &s3.NotificationConfiguration{
			LambdaFunctionConfigurations: []*s3.LambdaFunctionConfiguration{
				{
					Id:                aws.String(notificationID),
					LambdaFunctionArn: aws.String(b.cfg.NotifierLambdaArn),
					Events:            aws.StringSlice([]string{objectCreatedEvent}),
					Filter: &s3.NotificationConfigurationFilter{
						Key: &s3.KeyFilter{
							FilterRules: []*s3.FilterRule{
								{Name: aws.String("prefix"), Value: aws.String(b.cfg.EvaluationLocation)},
								{Name: aws.String("suffix"), Value: aws.String(evaluationSuffix)},
							},
						},
					},
				},
			},
		},
	}
}
