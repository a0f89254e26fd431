// Package update implements the best-effort release check that runs after a
// successful command. Results are cached on disk so the GitHub API is hit at
// most once per interval.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	semver "github.com/Masterminds/semver/v3"
)

const checkInterval = 24 * time.Hour

type CheckResult struct {
	CurrentVersion  string
	LatestVersion   string
	ReleaseURL      string
	UpdateAvailable bool
}

type cacheState struct {
	LastChecked   time.Time `json:"last_checked"`
	LatestVersion string    `json:"latest_version"`
	ReleaseURL    string    `json:"release_url"`
}

type githubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// DefaultStatePath places the cache under the user cache dir, or under
// TAGFORGE_CACHE_DIR when set (tests isolate themselves through it).
func DefaultStatePath() (string, error) {
	cacheDir := strings.TrimSpace(os.Getenv("TAGFORGE_CACHE_DIR"))
	if cacheDir == "" {
		var err error
		cacheDir, err = os.UserCacheDir()
		if err != nil || strings.TrimSpace(cacheDir) == "" {
			cacheDir = ".cache"
		}
		cacheDir = filepath.Join(cacheDir, "tagforge")
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create update cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "update-state.json"), nil
}

// CheckForUpdate compares the running version with the repo's latest
// release. Dev builds and unparsable versions skip the check entirely; a
// fresh-enough cache short-circuits the network.
func CheckForUpdate(ctx context.Context, statePath, currentVersion, repo string) (*CheckResult, error) {
	currentVersion = normalizeVersion(currentVersion)
	if currentVersion == "" || strings.EqualFold(currentVersion, "dev") {
		return nil, nil
	}
	current, err := semver.NewVersion(currentVersion)
	if err != nil {
		return nil, nil
	}

	cached := readState(statePath)
	if cached != nil && time.Since(cached.LastChecked) < checkInterval {
		if result := resultFromCache(current, cached); result != nil {
			return result, nil
		}
		return nil, nil
	}

	release, err := fetchLatestRelease(ctx, repo)
	if err != nil {
		if cached != nil {
			return resultFromCache(current, cached), nil
		}
		return nil, err
	}

	latestVersion := normalizeVersion(release.TagName)
	_ = writeState(statePath, cacheState{
		LastChecked:   time.Now().UTC(),
		LatestVersion: latestVersion,
		ReleaseURL:    release.HTMLURL,
	})

	latest, err := semver.NewVersion(latestVersion)
	if err != nil {
		return nil, err
	}
	if !latest.GreaterThan(current) {
		return nil, nil
	}

	return &CheckResult{
		CurrentVersion:  current.Original(),
		LatestVersion:   latest.Original(),
		ReleaseURL:      release.HTMLURL,
		UpdateAvailable: true,
	}, nil
}

func fetchLatestRelease(ctx context.Context, repo string) (*githubRelease, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", strings.TrimSpace(repo))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "tagforge-update-check")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("github releases api returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}
	if strings.TrimSpace(release.TagName) == "" {
		return nil, fmt.Errorf("github release tag is empty")
	}
	return &release, nil
}

func readState(path string) *cacheState {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var s cacheState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func writeState(path string, s cacheState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func resultFromCache(current *semver.Version, cached *cacheState) *CheckResult {
	latest, err := semver.NewVersion(normalizeVersion(cached.LatestVersion))
	if err != nil {
		return nil
	}
	if !latest.GreaterThan(current) {
		return nil
	}
	return &CheckResult{
		CurrentVersion:  current.Original(),
		LatestVersion:   latest.Original(),
		ReleaseURL:      cached.ReleaseURL,
		UpdateAvailable: true,
	}
}

func normalizeVersion(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "v")
}
