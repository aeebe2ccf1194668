// Package jobprofile reads and writes harvester.toml, the per-directory
// description of the scrape job that start and the dashboard submit.
package jobprofile

import (
	"github.com/socialharvester/harvester/internal/api"
)

// DefaultFileName is looked up in the working directory.
const DefaultFileName = "harvester.toml"

// Defaults written by harvester init
var (
	DefaultMaxPosts = 50
	DefaultNetworks = []string{"LinkedIn", "Instagram", "Facebook", "Twitter", "Reddit"}
)

// Profile is the contents of harvester.toml
type Profile struct {
	Job      JobSection      `toml:"job" mapstructure:"job"`
	Analysis AnalysisSection `toml:"analysis" mapstructure:"analysis"`
}

// JobSection describes the scrape job
type JobSection struct {
	Query    string   `toml:"query" mapstructure:"query"`
	MaxPosts int      `toml:"max_posts" mapstructure:"max_posts"`
	Networks []string `toml:"networks" mapstructure:"networks"`
}

// AnalysisSection selects networks for sentiment analysis. Empty means all
// networks the analysis supports.
type AnalysisSection struct {
	Networks []string `toml:"networks,omitempty" mapstructure:"networks"`
}

// StartRequest converts the job section to the API request body.
func (p *Profile) StartRequest() api.StartRequest {
	return api.StartRequest{
		Query:    p.Job.Query,
		MaxPosts: p.Job.MaxPosts,
		Networks: append([]string(nil), p.Job.Networks...),
	}
}

// New returns a profile for query with the init defaults.
func New(query string) *Profile {
	return &Profile{
		Job: JobSection{
			Query:    query,
			MaxPosts: DefaultMaxPosts,
			Networks: append([]string(nil), DefaultNetworks...),
		},
	}
}
