// Package bugsnag reports crashes of the harvester CLI.
package bugsnag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/bugsnag/bugsnag-go/v2"

	"github.com/socialharvester/harvester/internal/auth"
	"github.com/socialharvester/harvester/internal/version"
	"github.com/socialharvester/harvester/pkg/config"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/socialharvester/harvester/pkg/bugsnag.BugsnagAPIKey=..."
var (
	// BugsnagAPIKey enables reporting when non-empty.
	BugsnagAPIKey = ""

	DefaultReleaseStage = "prod"
)

var (
	initOnce sync.Once
	enabled  bool
)

// Initialize configures reporting from the user's config. Reporting stays off
// when no API key was compiled in or telemetry is disabled. Safe to call repeatedly.
func Initialize() {
	initOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			cfg = nil
		}
		enabled = configure(cfg)
	})
}

func configure(cfg *config.Config) bool {
	if cfg != nil && !cfg.IsTelemetryEnabled() {
		return false
	}

	apiKey := BugsnagAPIKey
	if envKey := os.Getenv("BUGSNAG_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return false
	}

	releaseStage := os.Getenv("HARVESTER_ENV")
	if releaseStage == "" {
		releaseStage = DefaultReleaseStage
	}

	bugsnag.Configure(bugsnag.Configuration{
		APIKey:              apiKey,
		ReleaseStage:        releaseStage,
		AppVersion:          version.Version,
		AppType:             "cli",
		ProjectPackages:     []string{"main", "github.com/socialharvester/harvester*"},
		NotifyReleaseStages: []string{"prod", "dev"},
		PanicHandler:        func() {},
		AutoCaptureSessions: false,
	})

	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("system", "os", runtime.GOOS)
		event.MetaData.Add("system", "arch", runtime.GOARCH)
		event.MetaData.Add("system", "go_version", runtime.Version())
		if cfg != nil {
			event.MetaData.Add("harvester", "log_mode", string(cfg.LogMode))
			if sub := auth.Subject(cfg.APIToken); sub != "" {
				event.User = &bugsnag.User{Id: sub}
			}
		}
		return nil
	})
	return true
}

// IsEnabled reports whether crash reporting is active.
func IsEnabled() bool {
	return enabled
}

// NotifyError reports err unless reporting is off or the user cancelled.
func NotifyError(ctx context.Context, err error) {
	Initialize()
	if !enabled || err == nil || IsUserCancellation(err) {
		return
	}
	_ = bugsnag.Notify(err, ctx, bugsnag.SeverityError)
}

// NotifyOnPanic reports a panic and re-panics. Defer it at the top of main.
func NotifyOnPanic(ctx context.Context) {
	r := recover()
	if r == nil {
		return
	}

	var err error
	switch x := r.(type) {
	case error:
		err = fmt.Errorf("panic: %w", x)
	default:
		err = fmt.Errorf("panic: %v", x)
	}
	NotifyError(ctx, err)
	panic(r)
}

// SetCommandContext records which command was running when an error occurred.
func SetCommandContext(command string, args []string) {
	Initialize()
	if !enabled {
		return
	}
	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("command", "name", command)
		if len(args) > 0 {
			event.MetaData.Add("command", "args", strings.Join(args, " "))
		}
		return nil
	})
}

// IsUserCancellation reports whether err comes from Ctrl+C or a closed context.
func IsUserCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || strings.Contains(err.Error(), "cancelled by user")
}
