package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/sirupsen/logrus"

	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/evaluation"
)

var ErrDelivery = errors.New("delivery error")

const (
	Subject = "New Contact Evaluation Ready for Review"

	senderDisplayName = "Amazon Connect Evaluations"
	domainLocalPart   = "noreply"
	displayTimezone   = "America/New_York"
	displayTimeLayout = "01/02/2006, 03:04 PM"
	// placeholderAlias keeps the link well formed when the instance alias is unknown.
	placeholderAlias = "unknown-instance"
	charset          = "UTF-8"
)

type SESAPI interface {
	SendEmailWithContext(ctx aws.Context, input *ses.SendEmailInput, opts ...request.Option) (*ses.SendEmailOutput, error)
}

type AliasResolver interface {
	FetchTenantAlias(ctx context.Context, instanceID string) (string, error)
}

type Message struct {
	ContactID                 string
	InstanceID                string
	Evaluator                 string
	EvaluationDefinitionTitle string
	EvaluationSubmitTimestamp evaluation.Timestamp
	AgentName                 string
}

type Mailer struct {
	ses      SESAPI
	aliases  AliasResolver
	logger   logrus.FieldLogger
	location *time.Location
}

func New(sesClient SESAPI, aliases AliasResolver, logger logrus.FieldLogger) (*Mailer, error) {
	loc, err := time.LoadLocation(displayTimezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %s: %v", displayTimezone, err)
	}

	return &Mailer{ses: sesClient, aliases: aliases, logger: logger, location: loc}, nil
}

// Send emails one recipient. Any SES failure is returned wrapped in ErrDelivery.
func (m *Mailer) Send(ctx context.Context, recipient string, msg Message, sender string) error {
	senderAddress := SenderAddress(sender)

	alias, err := m.aliases.FetchTenantAlias(ctx, msg.InstanceID)
	if err != nil {
		m.logger.WithError(err).WithField("instance_id", msg.InstanceID).Warn("error getting instance alias, using placeholder link")
		alias = placeholderAlias
	}
	contactURL := ContactURL(alias, msg.ContactID)

	body, err := m.render(msg, contactURL)
	if err != nil {
		return fmt.Errorf("%w: rendering message for %s: %v", ErrDelivery, recipient, err)
	}

	_, err = m.ses.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Source: aws.String(fmt.Sprintf("%q <%s>", senderDisplayName, senderAddress)),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(recipient)},
		},
		ReplyToAddresses: []*string{aws.String(senderAddress)},
		Message: &ses.Message{
			Subject: &ses.Content{Data: aws.String(Subject)},
			Body: &ses.Body{
				Html: &ses.Content{Charset: aws.String(charset), Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		m.logger.WithError(err).WithField("recipient", recipient).Error("error sending email notification")
		return fmt.Errorf("%w: sending to %s: %v", ErrDelivery, recipient, err)
	}
	m.logger.WithField("recipient", recipient).Info("email notification sent")

	return nil
}

// SenderAddress turns a bare SES domain identity into a noreply address.
func SenderAddress(sender string) string {
	if strings.Contains(sender, "@") {
		return sender
	}

	return domainLocalPart + "@" + sender
}

func ContactURL(alias, contactID string) string {
	return fmt.Sprintf("https://%s.my.connect.aws/contact-trace-records/details/%s?tz=%s", alias, contactID, displayTimezone)
}

// FormatSubmitTime renders the submit time in the display timezone; unparseable
// values are shown as exported.
func (m *Mailer) FormatSubmitTime(ts evaluation.Timestamp) string {
	t, err := ts.Time()
	if err != nil {
		return string(ts)
	}

	return t.In(m.location).Format(displayTimeLayout) + " EST"
}

func (m *Mailer) render(msg Message, contactURL string) (string, error) {
	var buf bytes.Buffer
	err := messageTemplate.Execute(&buf, templateData{
		ContactID:   msg.ContactID,
		FormTitle:   msg.EvaluationDefinitionTitle,
		AgentName:   msg.AgentName,
		Evaluator:   msg.Evaluator,
		SubmittedAt: m.FormatSubmitTime(msg.EvaluationSubmitTimestamp),
		ContactURL:  template.URL(contactURL),
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}
