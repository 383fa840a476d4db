package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"github.com/aws-samples/sample-automated-evaluation-notification-amazon-connect/internal/storage"
)

// concurrency is the max number of evaluations replayed at once in local mode
const concurrency = 10

type Processor interface {
	Process(ctx context.Context, event events.S3Event) (Outcome, error)
}

type KeyLister interface {
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Response is returned to the Lambda runtime; the trigger only logs it.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type responseBody struct {
	Message string `json:"message"`
}

type Handler struct {
	processor Processor
	lister    KeyLister
	logger    logrus.FieldLogger
}

func NewHandler(processor Processor, lister KeyLister, logger logrus.FieldLogger) *Handler {
	return &Handler{processor: processor, lister: lister, logger: logger}
}

func (h *Handler) HandleLambdaEvent(ctx context.Context, event events.S3Event) (Response, error) {
	if raw, err := json.Marshal(event); err == nil {
		h.logger.WithField("event", string(raw)).Debug("received event")
	}

	outcome, err := h.processor.Process(ctx, event)
	if err != nil {
		if IsDeliveryError(err) {
			h.logger.WithError(err).Error("email delivery failed, remaining notifications aborted")
		}
		return Response{}, err
	}

	return newResponse(outcome), nil
}

// HandleS3URL replays every .json evaluation under an s3:// prefix, one
// independent invocation per object, and returns the number of emails sent.
func (h *Handler) HandleS3URL(ctx context.Context, url string) (int, error) {
	bucket, prefix, err := storage.ParseS3URL(url)
	if err != nil {
		return 0, fmt.Errorf("failed to parse S3 URL: %v", err)
	}

	keys, err := h.lister.ListKeys(ctx, bucket, prefix)
	if err != nil {
		return 0, err
	}

	var objects []S3ObjectInfo
	for _, key := range keys {
		if strings.HasSuffix(key, ".json") {
			objects = append(objects, S3ObjectInfo{Bucket: bucket, Key: key})
		}
	}

	return h.processS3Objects(ctx, objects)
}

type S3ObjectInfo struct {
	Bucket string
	Key    string
}

func (h *Handler) processS3Objects(ctx context.Context, s3Objects []S3ObjectInfo) (int, error) {
	errs := make(chan error, len(s3Objects))
	var results tally
	var wg sync.WaitGroup
	concurrent := make(chan int, concurrency) // limit concurrent processing
	for _, s3obj := range s3Objects {
		wg.Add(1)
		concurrent <- 1
		go func(s3obj S3ObjectInfo) {
			defer func() { wg.Done(); <-concurrent }()
			outcome, err := h.processor.Process(ctx, objectCreatedEvent(s3obj))
			if err != nil {
				errs <- fmt.Errorf("error processing evaluation s3://%s/%s: %w", s3obj.Bucket, s3obj.Key, err)
				return
			}
			h.logger.WithField("key", s3obj.Key).Info(outcome.Message())
			results.record(outcome)
		}(s3obj)
	}
	wg.Wait()
	close(errs)

	sent, skipped := results.totals()
	h.logger.WithFields(logrus.Fields{"objects": len(s3Objects), "sent": sent, "skipped": skipped}).Info("replay complete")
	for err := range errs {
		if err != nil {
			return sent, err
		}
	}

	return sent, nil
}

func objectCreatedEvent(obj S3ObjectInfo) events.S3Event {
	var record events.S3EventRecord
	record.EventSource = "aws:s3"
	record.EventName = "ObjectCreated:Put"
	record.S3.Bucket.Name = obj.Bucket
	// Event keys arrive form-encoded.
	record.S3.Object.Key = storage.EncodeEventKey(obj.Key)

	return events.S3Event{Records: []events.S3EventRecord{record}}
}

func newResponse(outcome Outcome) Response {
	body, _ := json.Marshal(responseBody{Message: outcome.Message()})

	return Response{StatusCode: http.StatusOK, Body: string(body)}
}
