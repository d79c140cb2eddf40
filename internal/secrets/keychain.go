package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// keychain stores each secret as an account under one keychain service.
type keychain struct {
	service string
}

// openKeychain returns a keychain for service, or false when the host has
// no usable keychain. Reachability is checked with a throwaway write.
func openKeychain(service string) (*keychain, bool) {
	k := &keychain{service: service}
	const probe = "promptheus/probe"
	if err := keyring.Set(service, probe, "ok"); err != nil {
		return nil, false
	}
	_ = keyring.Delete(service, probe)
	return k, true
}

func (k *keychain) Get(key string) (string, error) {
	v, err := keyring.Get(k.service, key)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("keychain read %s: %w", key, err)
	}
	return v, nil
}

func (k *keychain) Set(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("keychain write %s: %w", key, err)
	}
	return nil
}

func (k *keychain) Delete(key string) error {
	err := keyring.Delete(k.service, key)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("keychain delete %s: %w", key, err)
}
