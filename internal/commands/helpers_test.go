package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/api/apitest"
)

// useTestConfig points the CLI at apiURL with a private home and config
// file, fast polling and pull mode logs. The working directory is a fresh
// temp dir so no harvester.toml is picked up.
func useTestConfig(t *testing.T, apiURL string) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	path := filepath.Join(home, "config.yaml")
	content := fmt.Sprintf(`apiurl: %s
logmode: pull
statusinterval: 20ms
reportinterval: 20ms
reconnectdelay: 20ms
requestspersecond: 1000
skipversioncheck: true
telemetry: false
`, apiURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("HARVESTER_CONFIG_PATH", path)
	t.Setenv("HARVESTER_API_URL", "")
	t.Setenv("HARVESTER_WS_URL", "")
	t.Setenv("HARVESTER_API_TOKEN", "")
	t.Setenv("HARVESTER_LOG_MODE", "")
	t.Setenv("HARVESTER_TELEMETRY_DISABLED", "true")
	return path
}

// runCLI executes the root command against srv and returns stdout and stderr.
func runCLI(t *testing.T, srv *apitest.Server, args ...string) (string, string, error) {
	t.Helper()

	useTestConfig(t, srv.URL)
	return execute(args...)
}

// execute runs the root command with the current configuration. Output is
// always plain so results do not depend on how the tests are attached.
func execute(args ...string) (string, string, error) {
	rootCmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--disable-animation"}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func splitArgs(s string) []string {
	return strings.Fields(s)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"LinkedIn", "reddit", "Twitter"}, splitList([]string{"LinkedIn, reddit", " Twitter ", ""}))
	assert.Nil(t, splitList(nil))
}

func TestJobFlags_Resolve(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("harvester.toml", []byte(`[job]
query = "electric cars"
max_posts = 80
networks = ["LinkedIn", "Reddit"]

[analysis]
networks = ["Twitter"]
`), 0o600))

	tests := []struct {
		name     string
		args     []string
		expected api.StartRequest
	}{
		{
			name:     "profile only",
			expected: api.StartRequest{Query: "electric cars", MaxPosts: 80, Networks: []string{"LinkedIn", "Reddit"}},
		},
		{
			name:     "flags override profile",
			args:     []string{"--query", "bikes", "--max-posts", "5", "--networks", "twitter,facebook"},
			expected: api.StartRequest{Query: "bikes", MaxPosts: 5, Networks: []string{"twitter", "facebook"}},
		},
		{
			name:     "missing profile falls back to defaults",
			args:     []string{"--profile", "missing.toml", "--query", "bikes"},
			expected: api.StartRequest{Query: "bikes", MaxPosts: 50, Networks: []string{"LinkedIn", "Instagram", "Facebook", "Twitter", "Reddit"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var jf jobFlags
			cmd := &cobra.Command{Use: "probe"}
			addJobFlags(cmd, &jf)
			require.NoError(t, cmd.ParseFlags(tt.args))

			req, analyze, err := jf.resolve(cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req)
			if tt.name == "missing profile falls back to defaults" {
				assert.Empty(t, analyze)
			} else {
				assert.Equal(t, []string{"Twitter"}, analyze)
			}
		})
	}
}

func TestJobFlags_ResolveBrokenProfile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("harvester.toml", []byte("query = \"no job section\"\n"), 0o600))

	var jf jobFlags
	cmd := &cobra.Command{Use: "probe"}
	addJobFlags(cmd, &jf)
	require.NoError(t, cmd.ParseFlags(nil))

	_, _, err := jf.resolve(cmd)
	assert.ErrorContains(t, err, "[job] section not found")
}
