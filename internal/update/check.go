// Package update looks up the newest promptheus release on GitHub.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	checkTimeout   = 3 * time.Second
)

// Release describes the newest published release next to the running build.
type Release struct {
	Latest  string
	Current string
	URL     string
}

// Newer reports whether the published release is ahead of the running one.
// Development builds ("dev", "") never report an update.
func (r Release) Newer() bool {
	if r.Current == "" || r.Current == "dev" {
		return false
	}
	return compareVersions(r.Latest, r.Current) > 0
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker queries the releases API for one repository.
type Checker struct {
	Owner   string
	Repo    string
	BaseURL string
	Client  *http.Client
}

// NewChecker returns a checker for owner/repo on github.com.
func NewChecker(owner, repo string) *Checker {
	return &Checker{
		Owner:   owner,
		Repo:    repo,
		BaseURL: defaultBaseURL,
		Client:  &http.Client{Timeout: checkTimeout},
	}
}

// Latest fetches the latest release and pairs it with current.
func (c *Checker) Latest(ctx context.Context, current string) (Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimRight(c.BaseURL, "/"), c.Owner, c.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Release{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("failed to reach GitHub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("release lookup returned %d", resp.StatusCode)
	}
	var rel ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Release{}, fmt.Errorf("failed to decode release: %w", err)
	}
	return Release{
		Latest:  strings.TrimPrefix(rel.TagName, "v"),
		Current: strings.TrimPrefix(current, "v"),
		URL:     rel.HTMLURL,
	}, nil
}

// compareVersions compares major.minor.patch strings.
// Returns >0 if a > b, <0 if a < b, 0 if equal.
func compareVersions(a, b string) int {
	ap := parseVersion(a)
	bp := parseVersion(b)
	for i := range ap {
		if ap[i] != bp[i] {
			return ap[i] - bp[i]
		}
	}
	return 0
}

// parseVersion splits "1.2.3" into [1, 2, 3]. Missing or non-numeric parts
// are 0, and a pre-release suffix ("1.2.3-rc1") is ignored.
func parseVersion(v string) [3]int {
	v, _, _ = strings.Cut(v, "-")
	var parts [3]int
	for i, s := range strings.SplitN(v, ".", 3) {
		n, _ := strconv.Atoi(s)
		parts[i] = n
	}
	return parts
}
