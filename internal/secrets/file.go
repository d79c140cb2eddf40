package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

const (
	credentialsFile = "credentials.toml"
	credentialsMode = 0o600
)

// credentials is the on-disk layout of the fallback store.
type credentials struct {
	Secrets map[string]string `toml:"secrets"`
}

// fileStore holds secrets in credentials.toml beside config.toml, for hosts
// without a keychain. The file must stay private to its owner.
type fileStore struct {
	mu   sync.Mutex
	path string
}

func newFileStore(dir string) *fileStore {
	return &fileStore{path: filepath.Join(dir, credentialsFile)}
}

func (f *fileStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.read()
	if err != nil {
		return "", err
	}
	v, ok := c.Secrets[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *fileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.read()
	if err != nil {
		return err
	}
	c.Secrets[key] = value
	return f.write(c)
}

// Delete drops key and removes the file once nothing is left in it.
func (f *fileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := c.Secrets[key]; !ok {
		return nil
	}
	delete(c.Secrets, key)
	if len(c.Secrets) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", f.path, err)
		}
		return nil
	}
	return f.write(c)
}

func (f *fileStore) read() (credentials, error) {
	c := credentials{Secrets: map[string]string{}}
	info, err := os.Stat(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	if info.Mode().Perm()&0o077 != 0 {
		return c, fmt.Errorf("%s is accessible by other users (mode %o); run chmod 600 on it", f.path, info.Mode().Perm())
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return c, err
	}
	if err := toml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	if c.Secrets == nil {
		c.Secrets = map[string]string{}
	}
	return c, nil
}

// write replaces the file through a private temp file so a crash never
// leaves a truncated or world-readable copy behind.
func (f *fileStore) write(c credentials) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	raw, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(credentialsMode); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
