// Package secrets keeps the GitHub token for gist sync out of config.toml.
package secrets

import "errors"

const serviceName = "promptheus"

// GitHubTokenKey is the account the gist token is saved under.
const GitHubTokenKey = "github/token"

// SecretStore is a small key/value store for credentials. Delete of a
// missing key is not an error.
type SecretStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

var ErrNotFound = errors.New("secret not found")

// New prefers the OS keychain and falls back to credentials.toml in dir.
func New(dir string) SecretStore {
	if k, ok := openKeychain(serviceName); ok {
		return k
	}
	return newFileStore(dir)
}

// Describe names where s keeps its secrets, for `config show`.
func Describe(s SecretStore) string {
	switch v := s.(type) {
	case *keychain:
		return "OS keychain (" + v.service + ")"
	case *fileStore:
		return v.path
	default:
		return "custom"
	}
}
