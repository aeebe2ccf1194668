package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/socialharvester/harvester/pkg/config"
)

// parseValue converts a raw command line value to the type stored for key.
// key must already be normalized.
func parseValue(key, raw string) (any, error) {
	switch key {
	case "logmode":
		mode, err := config.ParseLogMode(raw)
		if err != nil {
			return nil, err
		}
		return string(mode), nil
	case "statusinterval", "reportinterval", "reconnectdelay", "requesttimeout":
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q (examples: 500ms, 2s, 1m)", raw)
		}
		if d <= 0 {
			return nil, fmt.Errorf("duration must be positive, got %s", d)
		}
		return d.String(), nil
	case "requestspersecond":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid rate %q (expected a positive number)", raw)
		}
		return f, nil
	case "skipversioncheck", "telemetry":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q (expected true or false)", raw)
		}
		return b, nil
	case "apiurl", "wsurl":
		return strings.TrimRight(strings.TrimSpace(raw), "/"), nil
	default:
		return raw, nil
	}
}

// displayValue hides secrets in listings.
func displayValue(key string, value any) string {
	s := fmt.Sprint(value)
	if key == "apitoken" && s != "" {
		if len(s) <= 8 {
			return "********"
		}
		return s[:4] + "..." + s[len(s)-4:]
	}
	return s
}

func printValidKeys(w io.Writer) {
	fmt.Fprintf(w, "Valid configuration keys:\n") //nolint:errcheck // best effort
	for _, key := range config.GetUserFacingKeys() {
		desc := config.GetConfigKeyDescription(config.NormalizeKey(key))
		fmt.Fprintf(w, "  %s - %s\n", key, desc) //nolint:errcheck // best effort
	}
}
