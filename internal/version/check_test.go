package version

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/socialharvester/harvester/internal/api"
	apimock "github.com/socialharvester/harvester/internal/api/mock"
)

func serverInfo(title, v string) *api.ServerInfo {
	info := &api.ServerInfo{}
	info.Info.Title = title
	info.Info.Version = v
	return info
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		version    string
		compatible bool
	}{
		{"0.1.0", true},
		{"v1.4.2", true},
		{"2.0.0", false},
		{"0.0.9", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			compat, err := evaluate("Harvester API", tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.compatible, compat.Compatible)
		})
	}

	_, err := evaluate("x", "not-a-version")
	assert.ErrorContains(t, err, "invalid version")
}

func TestCheckServer(t *testing.T) {
	client := apimock.NewMockClient(t)
	client.On("GetServerInfo", mock.Anything).Return(serverInfo("Harvester API", "0.1.0"), nil).Once()

	compat, err := CheckServer(context.Background(), client)
	require.NoError(t, err)
	assert.True(t, compat.Compatible)
	assert.Equal(t, "Harvester API", compat.Title)
}

func TestPrintCompatibilityWarning(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("skip sends nothing", func(t *testing.T) {
		client := apimock.NewMockClient(t)
		var buf bytes.Buffer

		PrintCompatibilityWarning(context.Background(), &buf, client, "http://a", true)
		assert.Empty(t, buf.String())
	})

	t.Run("incompatible server warns and is cached", func(t *testing.T) {
		client := apimock.NewMockClient(t)
		client.On("GetServerInfo", mock.Anything).Return(serverInfo("Harvester API", "3.0.0"), nil).Once()
		var buf bytes.Buffer

		PrintCompatibilityWarning(context.Background(), &buf, client, "http://b", false)
		assert.Contains(t, buf.String(), "Harvester API reports API version 3.0.0")

		buf.Reset()
		PrintCompatibilityWarning(context.Background(), &buf, client, "http://b", false)
		assert.Contains(t, buf.String(), "3.0.0", "second call is served from the cache")
	})

	t.Run("unreachable server is silent", func(t *testing.T) {
		client := apimock.NewMockClient(t)
		client.On("GetServerInfo", mock.Anything).Return(nil, errors.New("connection refused")).Once()
		var buf bytes.Buffer

		PrintCompatibilityWarning(context.Background(), &buf, client, "http://c", false)
		assert.Empty(t, buf.String())
	})
}
