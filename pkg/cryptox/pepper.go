package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// SetPepper replaces the process-wide pepper mixed into password hashes.
func SetPepper(p string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = p
}

// Pepper returns the current pepper, empty until one is set or loaded.
func Pepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}

// LoadPepper reads the pepper from path, generating and persisting a new
// one when the file does not exist yet.
func LoadPepper(path string) error {
	b, err := loadOrCreate(path, func() ([]byte, error) {
		raw := make([]byte, keyLength)
		if _, err := rand.Read(raw); err != nil {
			return nil, err
		}
		return []byte(base64.RawURLEncoding.EncodeToString(raw)), nil
	})
	if err != nil {
		return fmt.Errorf("cryptox: load pepper: %w", err)
	}
	SetPepper(string(b))
	return nil
}

// loadOrCreate returns the contents of path, or writes the output of gen
// there with owner-only permissions when the file is missing.
func loadOrCreate(path string, gen func() ([]byte, error)) ([]byte, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	path = filepath.Clean(path)

	b, err := os.ReadFile(path)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	b, err = gen()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return nil, err
	}
	return b, nil
}
