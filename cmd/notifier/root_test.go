package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReplayer struct {
	url  string
	sent int
	err  error
}

func (f *fakeReplayer) HandleS3URL(_ context.Context, url string) (int, error) {
	f.url = url
	return f.sent, f.err
}

func TestRootCommand(t *testing.T) {
	t.Run("Prints sent count", func(t *testing.T) {
		r := &fakeReplayer{sent: 3}
		cmd := newRootCommand(r)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"s3://evals/connect/"})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "s3://evals/connect/", r.url)
		assert.Equal(t, "Sent 3 notification(s)\n", out.String())
	})

	t.Run("Requires url", func(t *testing.T) {
		cmd := newRootCommand(&fakeReplayer{})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{})

		assert.Error(t, cmd.Execute())
	})

	t.Run("Replay error", func(t *testing.T) {
		cmd := newRootCommand(&fakeReplayer{err: errors.New("boom")})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"s3://evals/"})

		assert.EqualError(t, cmd.Execute(), "boom")
	})
}
