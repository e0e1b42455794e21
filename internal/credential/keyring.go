// Package credential caches the Yahoo app password in the system keyring so
// reconnects after a dropped IMAP session do not prompt again.
package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "inboxguardian"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/inboxguardian/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("inboxguardian-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func passwordKey(email string) string {
	return "yahoo-app-password:" + strings.ToLower(strings.TrimSpace(email))
}

// SaveAppPassword stores the app password for a Yahoo account.
func SaveAppPassword(email, password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: passwordKey(email), Data: []byte(password)}); err != nil {
		return fmt.Errorf("saving app password for %q: %w", email, err)
	}
	return nil
}

// LoadAppPassword returns the cached app password, or empty string when none
// is stored.
func LoadAppPassword(email string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(passwordKey(email))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading app password for %q: %w", email, err)
	}
	return string(item.Data), nil
}

// DeleteAppPassword removes the cached app password. A missing entry is not
// an error.
func DeleteAppPassword(email string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}
	err = ring.Remove(passwordKey(email))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting app password for %q: %w", email, err)
	}
	return nil
}
