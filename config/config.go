// Package config resolves runtime configuration from the environment. A .env
// file is loaded once (if present) via godotenv, mirroring how the workflows
// are configured in development. Required keys fail fast: a collaborator must
// never come up half-initialized and defer the failure to its first use.
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// MissingKeyError reports a required environment key that was absent or empty.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("config: required key %s is not set", e.Key)
}

var loadOnce sync.Once

// Load reads a .env file into the process environment. Missing files are not
// an error; explicit environment variables always win over file values.
func Load() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Require returns the value for key or a MissingKeyError if unset/empty.
func Require(key string) (string, error) {
	Load()
	v := os.Getenv(key)
	if v == "" {
		return "", &MissingKeyError{Key: key}
	}
	return v, nil
}

// Get returns the value for key, or fallback when unset/empty.
func Get(key, fallback string) string {
	Load()
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt returns the integer value for key, or fallback when unset or not a
// valid integer.
func GetInt(key string, fallback int) int {
	Load()
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
