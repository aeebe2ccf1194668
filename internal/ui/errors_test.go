package ui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
)

func TestClassifyError(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))

	existing := NewFileSystemError(errors.New("disk full"))
	assert.Same(t, existing, ClassifyError(existing))

	cancelled := ClassifyError(fmt.Errorf("polling: %w", context.Canceled))
	assert.Equal(t, ErrorTypeUserCancelled, cancelled.Type)
	assert.True(t, cancelled.SilentExit)

	invalid := ClassifyError(fmt.Errorf("start: %w", &jobsync.ValidationError{Field: "query", Message: "Enter a search query"}))
	assert.Equal(t, ErrorTypeValidation, invalid.Type)
	assert.False(t, invalid.SilentExit)

	rejected := ClassifyError(fmt.Errorf("start: %w", &api.Error{StatusCode: 409, Detail: "already running"}))
	assert.Equal(t, ErrorTypeAPI, rejected.Type)

	transport := ClassifyError(errors.New("connection refused"))
	assert.Equal(t, ErrorTypeAPI, transport.Type)
	assert.ErrorContains(t, transport, "connection refused")
	assert.True(t, transport.SuppressUsage)
}

func TestUIError_Unwrap(t *testing.T) {
	inner := &api.Error{StatusCode: 404}
	err := NewAPIError(inner)

	var target *api.Error
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 404, target.StatusCode)
}
