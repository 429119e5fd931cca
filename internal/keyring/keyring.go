// Package keyring stores flowmind's secrets in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/willofcode/flowmind/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested name
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names a value flowmind keeps in the keyring.
type Secret string

const (
	SecretDatabase Secret = constants.DefaultKeyringUser
	SecretOpenAI   Secret = constants.OpenAIKeyringUser
)

// ParseSecret maps the CLI names "database" and "openai" onto a Secret.
func ParseSecret(name string) (Secret, error) {
	switch name {
	case "database", "db", string(SecretDatabase):
		return SecretDatabase, nil
	case "openai", string(SecretOpenAI):
		return SecretOpenAI, nil
	}
	return "", fmt.Errorf("unknown secret %q (want database or openai)", name)
}

func Get(s Secret) (string, error) {
	v, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func Set(s Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", s)
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", s, err)
	}
	return nil
}

func Delete(s Secret) error {
	if err := keyring.Delete(constants.AppName, string(s)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", s, err)
	}
	return nil
}

// Lookup returns the stored secret, or "" when none is stored or the
// keyring cannot be reached.
func Lookup(s Secret) string {
	v, err := Get(s)
	if err != nil {
		return ""
	}
	return v
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
