package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/socialharvester/harvester/internal/api"
)

// SupportedServers is the range of backend API versions this client speaks.
const SupportedServers = ">= 0.1.0, < 2.0.0"

const (
	cacheFile     = ".harvester/server_cache.json"
	cacheDuration = 24 * time.Hour
)

// ServerCompatibility is the outcome of comparing the backend's advertised
// version against SupportedServers.
type ServerCompatibility struct {
	Title      string
	Version    string
	Compatible bool
}

type serverCache struct {
	Servers map[string]cachedServer `json:"servers"`
}

type cachedServer struct {
	Title     string    `json:"title"`
	Version   string    `json:"version"`
	CheckedAt time.Time `json:"checkedAt"`
}

// CheckServer fetches the backend's OpenAPI info and checks its version.
func CheckServer(ctx context.Context, client api.Client) (*ServerCompatibility, error) {
	info, err := client.GetServerInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read server info: %w", err)
	}
	return evaluate(info.Info.Title, info.Info.Version)
}

func evaluate(title, serverVersion string) (*ServerCompatibility, error) {
	constraint, err := version.NewConstraint(SupportedServers)
	if err != nil {
		return nil, fmt.Errorf("invalid supported range: %w", err)
	}

	v, err := version.NewVersion(strings.TrimPrefix(serverVersion, "v"))
	if err != nil {
		return nil, fmt.Errorf("server reported an invalid version %q: %w", serverVersion, err)
	}

	return &ServerCompatibility{
		Title:      title,
		Version:    serverVersion,
		Compatible: constraint.Check(v),
	}, nil
}

// PrintCompatibilityWarning warns on w when the backend at apiURL is outside
// the supported range. Results are cached per URL for a day and failures are
// silent: the command itself will report an unreachable server.
func PrintCompatibilityWarning(ctx context.Context, w io.Writer, client api.Client, apiURL string, skip bool) {
	if skip {
		return
	}

	var compat *ServerCompatibility
	if cached, ok := readCache(apiURL); ok {
		compat, _ = evaluate(cached.Title, cached.Version)
	}
	if compat == nil {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		var err error
		compat, err = CheckServer(ctx, client)
		if err != nil {
			slog.Debug("Server compatibility check skipped", "error", err)
			return
		}
		writeCache(apiURL, compat)
	}

	if compat.Compatible {
		return
	}
	fmt.Fprintf(w, "\n⚠️  %s reports API version %s; this client supports %s.\n", serverName(compat), compat.Version, SupportedServers)
	fmt.Fprintf(w, "Some commands may fail. To disable this check: harvester config set skip-version-check true\n\n")
}

func serverName(c *ServerCompatibility) string {
	if c.Title != "" {
		return c.Title
	}
	return "The server"
}

func cachePath() (string, bool) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(homeDir, cacheFile), true
}

func loadCache() serverCache {
	cache := serverCache{Servers: map[string]cachedServer{}}
	path, ok := cachePath()
	if !ok {
		return cache
	}
	data, err := os.ReadFile(path) //nolint:gosec // Cache file in user's home directory
	if err != nil {
		return cache
	}
	if err := json.Unmarshal(data, &cache); err != nil || cache.Servers == nil {
		return serverCache{Servers: map[string]cachedServer{}}
	}
	return cache
}

func readCache(apiURL string) (cachedServer, bool) {
	entry, ok := loadCache().Servers[apiURL]
	if !ok || time.Since(entry.CheckedAt) > cacheDuration {
		return cachedServer{}, false
	}
	return entry, true
}

func writeCache(apiURL string, compat *ServerCompatibility) {
	path, ok := cachePath()
	if !ok {
		return
	}

	cache := loadCache()
	cache.Servers[apiURL] = cachedServer{Title: compat.Title, Version: compat.Version, CheckedAt: time.Now()}

	data, err := json.Marshal(cache)
	if err != nil {
		return
	}
	//nolint:errcheck,gosec // Best effort cache write
	os.MkdirAll(filepath.Dir(path), 0o755)
	//nolint:errcheck,gosec // Best effort cache write
	os.WriteFile(path, data, 0o644)
}
