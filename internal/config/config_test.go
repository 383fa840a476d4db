package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("EvaluationFlagToQuestionText", "")
		t.Setenv("EvaluationFlagToAgentQuestionText", "")
		t.Setenv("UsehierarchyForNotification", "")
		t.Setenv("EmailFieldSource", "")
		t.Setenv("SENDER_EMAIL", "")
		t.Setenv("ROLE_TAG_KEY", "")
		t.Setenv("LOG_LEVEL", "")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, DefaultRoleQuestionText, cfg.RoleQuestionText)
		assert.Empty(t, cfg.AgentQuestionText)
		assert.False(t, cfg.UseHierarchy)
		assert.Equal(t, EmailFieldEmail, cfg.EmailFieldSource)
		assert.Empty(t, cfg.SenderEmail)
		assert.Equal(t, DefaultRoleTagKey, cfg.RoleTagKey)
		assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	})

	t.Run("Valid environment variables", func(t *testing.T) {
		t.Setenv("AWS_REGION", "us-east-1")
		t.Setenv("EvaluationFlagToQuestionText", "Who should review?")
		t.Setenv("EvaluationFlagToAgentQuestionText", "Flag to the Agent?")
		t.Setenv("UsehierarchyForNotification", "YES")
		t.Setenv("EmailFieldSource", "SecondaryEmail")
		t.Setenv("SENDER_EMAIL", " example.com ")
		t.Setenv("ROLE_TAG_KEY", "team-role")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", cfg.Region)
		assert.Equal(t, "Who should review?", cfg.RoleQuestionText)
		assert.Equal(t, "Flag to the Agent?", cfg.AgentQuestionText)
		assert.True(t, cfg.UseHierarchy)
		assert.Equal(t, EmailFieldSecondaryEmail, cfg.EmailFieldSource)
		assert.Equal(t, "example.com", cfg.SenderEmail)
		assert.Equal(t, "team-role", cfg.RoleTagKey)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("Hierarchy flag other than yes", func(t *testing.T) {
		t.Setenv("UsehierarchyForNotification", "no")
		t.Setenv("EmailFieldSource", "")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.False(t, cfg.UseHierarchy)
	})

	t.Run("Invalid EmailFieldSource", func(t *testing.T) {
		t.Setenv("EmailFieldSource", "Mobile")

		_, err := LoadFromEnv()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.Contains(t, err.Error(), "invalid EmailFieldSource 'Mobile'")
	})
}

func TestLoadProvisioningFromEnv(t *testing.T) {
	t.Run("Valid environment variables", func(t *testing.T) {
		t.Setenv("ConnectEvaluationBucket", "evals")
		t.Setenv("ConnectEvaluationLocation", "connect/evaluations/")
		t.Setenv("S3EventLambda", "arn:aws:lambda:us-east-1:123456789012:function:notifier")

		cfg, err := LoadProvisioningFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "evals", cfg.EvaluationBucket)
		assert.Equal(t, "connect/evaluations/", cfg.EvaluationLocation)
		assert.Equal(t, "arn:aws:lambda:us-east-1:123456789012:function:notifier", cfg.NotifierLambdaArn)
	})

	t.Run("Missing ConnectEvaluationBucket", func(t *testing.T) {
		t.Setenv("ConnectEvaluationBucket", "")
		t.Setenv("S3EventLambda", "arn")

		_, err := LoadProvisioningFromEnv()
		require.Error(t, err)
		assert.Equal(t, "configuration error: environment variable ConnectEvaluationBucket is required", err.Error())
	})

	t.Run("Missing S3EventLambda", func(t *testing.T) {
		t.Setenv("ConnectEvaluationBucket", "evals")
		t.Setenv("S3EventLambda", "")

		_, err := LoadProvisioningFromEnv()
		require.Error(t, err)
		assert.Equal(t, "configuration error: environment variable S3EventLambda is required", err.Error())
	})
}
