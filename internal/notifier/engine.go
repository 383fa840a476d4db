// Package notifier decides who hears about a submitted evaluation and drives
// the emails.
//
// Lookup and search failures are soft: they are logged and the invocation ends
// as a no-op. Delivery failures are hard: the first one aborts the remaining
// sends and is returned to the caller.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/config"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/directory"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/evaluation"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/mailer"
	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/storage"
)

// No-op reasons.
const (
	ReasonMissingBucketOrKey    = "missing bucket or key"
	ReasonMissingEvaluationData = "missing evaluation data"
	ReasonNoRoleSelected        = "no role selected"
	ReasonAgentNotFound         = "agent not found"
	ReasonNoHierarchyGroup      = "no hierarchy group"
	ReasonNoRecipients          = "no agent or role found"
	ReasonSenderNotConfigured   = "sender email not configured"
)

// agentFlagAnswer is the selected value that flags the evaluated agent.
const agentFlagAnswer = "yes"

// detailFetchConcurrency bounds the parallel DescribeUser calls for search hits.
const detailFetchConcurrency = 10

type DocumentFetcher interface {
	FetchDocument(ctx context.Context, bucket, key string) (*evaluation.Document, error)
}

type Directory interface {
	FetchUser(ctx context.Context, instanceID, userID string) (*directory.User, error)
	SearchByHierarchyAndRole(ctx context.Context, hierarchyGroupID, role, instanceID string) ([]directory.UserSummary, error)
	SearchByRole(ctx context.Context, role, instanceID string) ([]directory.UserSummary, error)
}

type Sender interface {
	Send(ctx context.Context, recipient string, msg mailer.Message, sender string) error
}

type Recipient struct {
	ID           string
	Username     string
	EmailAddress string
}

// Outcome is either a no-op with a reason or the number of emails sent.
type Outcome struct {
	Sent   int
	Reason string
}

func noOp(reason string) Outcome {
	return Outcome{Reason: reason}
}

func (o Outcome) NoOp() bool {
	return o.Reason != ""
}

func (o Outcome) Message() string {
	if o.NoOp() {
		return "No Evaluation Notification - " + o.Reason
	}

	return fmt.Sprintf("Evaluation notification sent to %d recipient(s)", o.Sent)
}

type Engine struct {
	docs   DocumentFetcher
	dir    Directory
	mail   Sender
	cfg    config.Config
	logger logrus.FieldLogger
}

func NewEngine(docs DocumentFetcher, dir Directory, mail Sender, cfg config.Config, logger logrus.FieldLogger) *Engine {
	return &Engine{docs: docs, dir: dir, mail: mail, cfg: cfg, logger: logger}
}

// Process handles one object-created notification.
func (e *Engine) Process(ctx context.Context, event events.S3Event) (Outcome, error) {
	log := e.logger.WithField("request_id", requestID(ctx))

	bucket, key := objectFromEvent(event, log)
	if bucket == "" || key == "" {
		return e.skip(log, ReasonMissingBucketOrKey), nil
	}
	log = log.WithFields(logrus.Fields{"bucket": bucket, "key": key})

	doc, err := e.docs.FetchDocument(ctx, bucket, key)
	if err != nil {
		log.WithError(err).Error("error fetching evaluation document")
		return e.skip(log, ReasonMissingEvaluationData), nil
	}
	if !doc.Complete() {
		return e.skip(log, ReasonMissingEvaluationData), nil
	}
	meta := doc.Metadata
	log = log.WithFields(logrus.Fields{"instance_id": meta.InstanceID, "contact_id": meta.ContactID})

	targetRole := ""
	if answer, ok := doc.SelectedAnswer(e.cfg.RoleQuestionText); ok {
		targetRole = strings.ToLower(strings.TrimSpace(answer))
	}
	flagToAgent := false
	if answer, ok := doc.SelectedAnswer(e.cfg.AgentQuestionText); ok {
		flagToAgent = strings.EqualFold(strings.TrimSpace(answer), agentFlagAnswer)
	}
	log = log.WithFields(logrus.Fields{"target_role": targetRole, "flag_to_agent": flagToAgent})
	if targetRole == "" && !flagToAgent {
		return e.skip(log, ReasonNoRoleSelected), nil
	}

	agent, err := e.dir.FetchUser(ctx, meta.InstanceID, meta.AgentID)
	if err != nil {
		log.WithError(err).Error("error fetching evaluated agent")
		return e.skip(log, ReasonAgentNotFound), nil
	}
	if agent == nil || agent.Identity == nil {
		return e.skip(log, ReasonAgentNotFound), nil
	}
	agentName := agent.FullName()

	var recipients []Recipient
	if targetRole != "" {
		var candidates []directory.UserSummary
		if e.cfg.UseHierarchy {
			if agent.HierarchyGroupID == "" {
				return e.skip(log, ReasonNoHierarchyGroup), nil
			}
			candidates, err = e.dir.SearchByHierarchyAndRole(ctx, agent.HierarchyGroupID, targetRole, meta.InstanceID)
		} else {
			candidates, err = e.dir.SearchByRole(ctx, targetRole, meta.InstanceID)
		}
		if err != nil {
			log.WithError(err).Error("error searching users")
			candidates = nil
		}
		log.WithField("candidates", len(candidates)).Debug("user search complete")
		recipients = e.resolveCandidates(ctx, log, meta.InstanceID, targetRole, candidates)
	}

	if flagToAgent {
		if r, ok := e.recipientFor(agent); ok {
			recipients = append(recipients, r)
		} else {
			log.WithField("user_id", agent.ID).Warn("evaluated agent has no email address")
		}
	}

	recipients = validRecipients(log, dedupe(recipients))
	if len(recipients) == 0 {
		return e.skip(log, ReasonNoRecipients), nil
	}

	if !ValidEmail(e.cfg.SenderEmail) {
		log.WithError(fmt.Errorf("%w: SENDER_EMAIL '%s' is not a valid address or domain", config.ErrConfiguration, e.cfg.SenderEmail)).Error("invalid sender")
		return e.skip(log, ReasonSenderNotConfigured), nil
	}

	msg := mailer.Message{
		ContactID:                 meta.ContactID,
		InstanceID:                meta.InstanceID,
		Evaluator:                 meta.Evaluator,
		EvaluationDefinitionTitle: meta.EvaluationDefinitionTitle,
		EvaluationSubmitTimestamp: meta.EvaluationSubmitTimestamp,
		AgentName:                 agentName,
	}
	for _, r := range recipients {
		log.WithFields(logrus.Fields{"username": r.Username, "recipient": r.EmailAddress}).Info("sending evaluation notification")
		if err := e.mail.Send(ctx, r.EmailAddress, msg, e.cfg.SenderEmail); err != nil {
			return Outcome{}, fmt.Errorf("notifying %s: %w", r.Username, err)
		}
	}

	log.WithField("sent", len(recipients)).Info("evaluation notifications sent")
	return Outcome{Sent: len(recipients)}, nil
}

// resolveCandidates re-reads every search hit and keeps those whose role tag
// matches targetRole. Order follows the search results.
func (e *Engine) resolveCandidates(ctx context.Context, log logrus.FieldLogger, instanceID, targetRole string, candidates []directory.UserSummary) []Recipient {
	resolved := make([]*Recipient, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchConcurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			user, err := e.dir.FetchUser(gctx, instanceID, candidate.ID)
			if err == nil && user == nil {
				err = fmt.Errorf("%w: empty record for %s", directory.ErrUserLookup, candidate.ID)
			}
			if err != nil {
				log.WithError(err).WithField("user_id", candidate.ID).Warn("skipping candidate, user lookup failed")
				return nil
			}
			role, _ := user.Tag(e.cfg.RoleTagKey)
			if !strings.EqualFold(strings.TrimSpace(role), targetRole) {
				log.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Debug("skipping candidate, role does not match")
				return nil
			}
			if r, ok := e.recipientFor(user); ok {
				resolved[i] = &r
			} else {
				log.WithField("user_id", user.ID).Warn("skipping candidate, no email address")
			}
			return nil
		})
	}
	_ = g.Wait()

	var recipients []Recipient
	for _, r := range resolved {
		if r != nil {
			recipients = append(recipients, *r)
		}
	}

	return recipients
}

func (e *Engine) recipientFor(user *directory.User) (Recipient, bool) {
	addr := strings.TrimSpace(EmailAddress(user, e.cfg.EmailFieldSource))
	if addr == "" {
		return Recipient{}, false
	}

	return Recipient{ID: user.ID, Username: user.Username, EmailAddress: addr}, true
}

// EmailAddress reads the address from the configured field, defaulting to Email.
func EmailAddress(user *directory.User, source config.EmailFieldSource) string {
	if source == config.EmailFieldUsername {
		return user.Username
	}
	if user.Identity == nil {
		return ""
	}
	if source == config.EmailFieldSecondaryEmail {
		return user.Identity.SecondaryEmail
	}

	return user.Identity.Email
}

func (e *Engine) skip(log logrus.FieldLogger, reason string) Outcome {
	out := noOp(reason)
	log.WithField("reason", reason).Info(out.Message())
	return out
}

func objectFromEvent(event events.S3Event, log logrus.FieldLogger) (bucket, key string) {
	if len(event.Records) == 0 {
		return "", ""
	}
	record := event.Records[0]
	if record.S3.Object.Key == "" {
		return record.S3.Bucket.Name, ""
	}
	key, err := storage.DecodeEventKey(record.S3.Object.Key)
	if err != nil {
		log.WithError(err).Warn("undecodable object key")
		return record.S3.Bucket.Name, ""
	}

	return record.S3.Bucket.Name, key
}

func dedupe(recipients []Recipient) []Recipient {
	seen := make(map[string]bool, len(recipients))
	out := recipients[:0]
	for _, r := range recipients {
		id := r.ID
		if id == "" {
			id = "email:" + strings.ToLower(r.EmailAddress)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, r)
	}

	return out
}

func validRecipients(log logrus.FieldLogger, recipients []Recipient) []Recipient {
	var out []Recipient
	for _, r := range recipients {
		if !ValidEmail(r.EmailAddress) {
			log.WithFields(logrus.Fields{"username": r.Username, "recipient": r.EmailAddress}).Warn("skipping user, invalid email address")
			continue
		}
		out = append(out, r)
	}

	return out
}

func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}

	return uuid.NewString()
}

// IsDeliveryError reports whether err came from the email service.
func IsDeliveryError(err error) bool {
	return errors.Is(err, mailer.ErrDelivery)
}
