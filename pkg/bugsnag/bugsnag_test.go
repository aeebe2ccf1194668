package bugsnag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/socialharvester/harvester/pkg/config"
)

func TestIsUserCancellation(t *testing.T) {
	assert.False(t, IsUserCancellation(nil))
	assert.True(t, IsUserCancellation(fmt.Errorf("poll: %w", context.Canceled)))
	assert.True(t, IsUserCancellation(errors.New("cancelled by user")))
	assert.False(t, IsUserCancellation(errors.New("API error (500)")))
}

func TestConfigure_DisabledWithoutKey(t *testing.T) {
	t.Setenv("BUGSNAG_API_KEY", "")
	assert.False(t, configure(&config.Config{}))
}

func TestConfigure_TelemetryOff(t *testing.T) {
	t.Setenv("BUGSNAG_API_KEY", "0123456789abcdef0123456789abcdef")
	off := false
	assert.False(t, configure(&config.Config{TelemetryEnabled: &off}))
}
