package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// ServiceName is the keychain service under which entries are stored.
const ServiceName = "ghlm"

// KeyringStore stores each key as an item in the OS keychain. It is the
// preferred backend where a keychain is available, since the file store
// only obfuscates credential payloads.
type KeyringStore struct {
	serviceName string
}

// NewKeyringStore returns a KeyringStore scoped to serviceName.
func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) Get(_ context.Context, key string) (string, bool, error) {
	value, err := keyring.Get(k.serviceName, key)
	if err == nil {
		return value, true, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	return "", false, fmt.Errorf("kvstore: keyring read failed: %w", err)
}

func (k *KeyringStore) Set(_ context.Context, key, value string) error {
	if err := keyring.Set(k.serviceName, key, value); err != nil {
		return fmt.Errorf("kvstore: keyring write failed: %w", err)
	}
	return nil
}

func (k *KeyringStore) Remove(_ context.Context, keys ...string) error {
	for _, key := range keys {
		err := keyring.Delete(k.serviceName, key)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("kvstore: keyring delete failed: %w", err)
		}
	}
	return nil
}
