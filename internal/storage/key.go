package storage

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16
	keySize  = 32 // AES-256

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// deriveKey stretches the passphrase from the settings into a badger
// encryption key. The salt lives in saltPath and is created on first use.
func deriveKey(passphrase, saltPath string) ([]byte, error) {
	salt, err := loadSalt(saltPath)
	if err != nil {
		return nil, err
	}
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keySize), nil
}

func loadSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(salt) != saltSize {
			return nil, fmt.Errorf("salt file %s is corrupt: %d bytes", path, len(salt))
		}
		return salt, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}

	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write salt file: %w", err)
	}
	return salt, nil
}
