package secrets

import (
	"errors"
	"os"
	"strings"
)

// TokenEnvVars are checked, in order, before the store.
var TokenEnvVars = []string{"PROMPTHEUS_GITHUB_ACCESS_TOKEN", "PET_GITHUB_ACCESS_TOKEN"}

// GitHubToken returns the gist token and where it came from: an
// environment variable name or "store". ErrNotFound when neither has one.
func GitHubToken(s SecretStore) (token, source string, err error) {
	for _, name := range TokenEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, name, nil
		}
	}
	if s == nil {
		return "", "", ErrNotFound
	}
	v, err := s.Get(GitHubTokenKey)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", "", ErrNotFound
	}
	return v, "store", nil
}

// IsNotFound reports whether err means no token is configured.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
