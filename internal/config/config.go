package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrConfiguration marks a missing or invalid setting.
var ErrConfiguration = errors.New("configuration error")

// EmailFieldSource selects which directory field holds a recipient's address.
type EmailFieldSource string

const (
	EmailFieldUsername       EmailFieldSource = "Username"
	EmailFieldEmail          EmailFieldSource = "Email"
	EmailFieldSecondaryEmail EmailFieldSource = "SecondaryEmail"
)

const (
	DefaultRoleQuestionText = "Which role should be notified?"
	DefaultRoleTagKey       = "Role"
	DefaultLogLevel         = "info"
)

type Config struct {
	Region            string
	RoleQuestionText  string
	AgentQuestionText string
	UseHierarchy      bool
	EmailFieldSource  EmailFieldSource
	SenderEmail       string
	RoleTagKey        string
	LogLevel          string
}

type ProvisioningConfig struct {
	EvaluationBucket   string
	EvaluationLocation string
	NotifierLambdaArn  string
}

func LoadFromEnv() (Config, error) {
	source, err := parseEmailFieldSource(os.Getenv("EmailFieldSource"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		Region:            os.Getenv("AWS_REGION"),
		RoleQuestionText:  envOrDefault("EvaluationFlagToQuestionText", DefaultRoleQuestionText),
		AgentQuestionText: os.Getenv("EvaluationFlagToAgentQuestionText"),
		UseHierarchy:      strings.EqualFold(strings.TrimSpace(os.Getenv("UsehierarchyForNotification")), "yes"),
		EmailFieldSource:  source,
		// A missing sender is reported per invocation so the function still answers 200.
		SenderEmail: strings.TrimSpace(os.Getenv("SENDER_EMAIL")),
		RoleTagKey:  envOrDefault("ROLE_TAG_KEY", DefaultRoleTagKey),
		LogLevel:    envOrDefault("LOG_LEVEL", DefaultLogLevel),
	}, nil
}

func LoadProvisioningFromEnv() (ProvisioningConfig, error) {
	bucket := os.Getenv("ConnectEvaluationBucket")
	if bucket == "" {
		return ProvisioningConfig{}, fmt.Errorf("%w: environment variable ConnectEvaluationBucket is required", ErrConfiguration)
	}

	lambdaArn := os.Getenv("S3EventLambda")
	if lambdaArn == "" {
		return ProvisioningConfig{}, fmt.Errorf("%w: environment variable S3EventLambda is required", ErrConfiguration)
	}

	return ProvisioningConfig{
		EvaluationBucket:   bucket,
		EvaluationLocation: os.Getenv("ConnectEvaluationLocation"),
		NotifierLambdaArn:  lambdaArn,
	}, nil
}

func parseEmailFieldSource(value string) (EmailFieldSource, error) {
	switch EmailFieldSource(strings.TrimSpace(value)) {
	case "", EmailFieldEmail:
		return EmailFieldEmail, nil
	case EmailFieldUsername:
		return EmailFieldUsername, nil
	case EmailFieldSecondaryEmail:
		return EmailFieldSecondaryEmail, nil
	}

	return "", fmt.Errorf("%w: invalid EmailFieldSource '%s', expected Username, Email or SecondaryEmail", ErrConfiguration, value)
}

func envOrDefault(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}

	return fallback
}
