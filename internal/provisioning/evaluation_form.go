package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/connect"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/config"
)

const (
	formTitle       = "Evaluation Notification Form"
	formDescription = "Evaluation notification form"
	sectionTitle    = "Notification Questions"
)

var ErrMissingInstanceID = errors.New("resource property InstanceId is required")

// roleOptions are the roles a reviewer can route the evaluation to.
var roleOptions = []string{"Supervisor", "Manager"}

type EvaluationFormAPI interface {
	CreateEvaluationFormWithContext(ctx aws.Context, input *connect.CreateEvaluationFormInput, opts ...request.Option) (*connect.CreateEvaluationFormOutput, error)
}

type FormCreator struct {
	connect EvaluationFormAPI
	logger  logrus.FieldLogger
}

func NewFormCreator(api EvaluationFormAPI, logger logrus.FieldLogger) *FormCreator {
	return &FormCreator{connect: api, logger: logger}
}

// Handle is a cfn.CustomResourceFunction creating the notification form on Create.
func (f *FormCreator) Handle(ctx context.Context, event cfn.Event) (string, map[string]interface{}, error) {
	log := f.logger.WithField("request_type", event.RequestType)
	if event.RequestType != cfn.RequestCreate {
		return event.PhysicalResourceID, map[string]interface{}{}, nil
	}

	instanceID, _ := event.ResourceProperties["InstanceId"].(string)
	if instanceID == "" {
		return "", nil, ErrMissingInstanceID
	}
	questionText, _ := event.ResourceProperties["QuestionText"].(string)
	if questionText == "" {
		questionText = config.DefaultRoleQuestionText
	}

	clientToken := event.RequestID
	if clientToken == "" {
		clientToken = uuid.NewString()
	}

	out, err := f.connect.CreateEvaluationFormWithContext(ctx, formInput(instanceID, questionText, clientToken))
	if err != nil {
		log.WithError(err).Error("error creating evaluation form")
		return "", nil, fmt.Errorf("create evaluation form on %s: %w", instanceID, err)
	}

	formID := aws.StringValue(out.EvaluationFormId)
	log.WithField("evaluation_form_id", formID).Info("evaluation form created")

	return formID, map[string]interface{}{
		"EvaluationFormId":  formID,
		"EvaluationFormArn": aws.StringValue(out.EvaluationFormArn),
	}, nil
}

func formInput(instanceID, questionText, clientToken string) *connect.CreateEvaluationFormInput {
	var options []*connect.EvaluationFormSingleSelectQuestionOption
	for _, role := range roleOptions {
		options = append(options, &connect.EvaluationFormSingleSelectQuestionOption{
			RefId: aws.String(strings.ToLower(role)),
			Text:  aws.String(role),
			Score: aws.Int64(1),
		})
	}

	return &connect.CreateEvaluationFormInput{
		InstanceId:  aws.String(instanceID),
		Title:       aws.String(formTitle),
		Description: aws.String(formDescription),
		ClientToken: aws.String(clientToken),
		Items: []*connect.EvaluationFormItem{
			{
				Section: &connect.EvaluationFormSection{
					Title: aws.String(sectionTitle),
					RefId: aws.String("section-1"),
					Items: []*connect.EvaluationFormItem{
						{
							Question: &connect.EvaluationFormQuestion{
								Title:        aws.String(questionText),
								RefId:        aws.String("role-question"),
								QuestionType: aws.String(connect.EvaluationFormQuestionTypeSingleselect),
								QuestionTypeProperties: &connect.EvaluationFormQuestionTypeProperties{
									SingleSelect: &connect.EvaluationFormSingleSelectQuestionProperties{
										Options: options,
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

