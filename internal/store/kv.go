// Package store persists the user's custom block list in a key-value store:
// the OS keyring when available, a private directory otherwise.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "linkclean"
	// FallbackDir is the directory for file-based storage (when keyring fails)
	FallbackDir = ".linkclean"

	probeKey = "_test_keyring_access_"
)

// ErrNotFound is returned when a key has never been written
var ErrNotFound = errors.New("key not found")

// KV is a minimal string key-value store
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// KeyringKV stores values in the OS keyring (encrypted by the OS)
type KeyringKV struct {
	Service string
}

func (k KeyringKV) Get(key string) (string, error) {
	v, err := keyring.Get(k.Service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load from keyring: %w", err)
	}
	return v, nil
}

func (k KeyringKV) Set(key, value string) error {
	if err := keyring.Set(k.Service, key, value); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

func (k KeyringKV) Delete(key string) error {
	err := keyring.Delete(k.Service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// FileKV stores each key as a JSON file in Dir
type FileKV struct {
	Dir string
}

func (f FileKV) path(key string) (string, error) {
	if err := os.MkdirAll(f.Dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create store directory: %w", err)
	}
	return filepath.Join(f.Dir, key+".json"), nil
}

func (f FileKV) Get(key string) (string, error) {
	path, err := f.path(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read store file: %w", err)
	}
	return string(data), nil
}

func (f FileKV) Set(key, value string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}

func (f FileKV) Delete(key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete store file: %w", err)
	}
	return nil
}

// Options selects the backing store
type Options struct {
	// Backend is "auto", "keyring" or "file"
	Backend string
	// Dir overrides the file store directory (default ~/.linkclean)
	Dir string
}

// Open returns the configured store. In auto mode the keyring is probed
// once and the file store is used in environments without one (CI, Codespaces).
func Open(opts Options) (KV, error) {
	switch opts.Backend {
	case "keyring":
		return KeyringKV{Service: KeyringService}, nil
	case "file":
		return openFile(opts.Dir)
	case "", "auto":
		if useFileBasedStorage() {
			log.Debug().Msg("Keyring unavailable, using file-based store")
			return openFile(opts.Dir)
		}
		return KeyringKV{Service: KeyringService}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

func openFile(dir string) (KV, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, FallbackDir)
	}
	return FileKV{Dir: dir}, nil
}

// useFileBasedStorage checks if we should use file-based storage
func useFileBasedStorage() bool {
	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		return true
	}

	if err := keyring.Set(KeyringService, probeKey, "test"); err != nil {
		return true
	}
	_ = keyring.Delete(KeyringService, probeKey)
	return false
}
