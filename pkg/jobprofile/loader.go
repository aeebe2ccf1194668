package jobprofile

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// ErrNotFound is returned by Load when the profile file does not exist.
var ErrNotFound = errors.New("job profile not found")

// Load reads a profile. Missing keys take the init defaults.
func Load(path string) (*Profile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s. Run `harvester init` to create one", ErrNotFound, path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault("job.max_posts", DefaultMaxPosts)
	v.SetDefault("job.networks", DefaultNetworks)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !v.IsSet("job") {
		return nil, fmt.Errorf("[job] section not found in %s", path)
	}

	// Read key by key so defaults apply to keys missing from the file
	profile := Profile{
		Job: JobSection{
			Query:    v.GetString("job.query"),
			MaxPosts: v.GetInt("job.max_posts"),
			Networks: v.GetStringSlice("job.networks"),
		},
	}
	if v.IsSet("analysis") {
		if err := v.UnmarshalKey("analysis", &profile.Analysis); err != nil {
			return nil, fmt.Errorf("failed to parse [analysis]: %w", err)
		}
	}
	return &profile, nil
}

// LoadOptional reads a profile, returning nil without error when the file is absent.
func LoadOptional(path string) (*Profile, error) {
	p, err := Load(path)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Write encodes profile to path. An existing file is only replaced when overwrite is set.
func Write(path string, profile *Profile, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s already exists", path)
	}

	data, err := toml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	header := []byte("# Job profile for the harvester CLI\n\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil { //nolint:gosec // Project file meant to be shared
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
