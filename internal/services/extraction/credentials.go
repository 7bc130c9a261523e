package extraction

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// CredentialSource resolves the API key for a backend. Backends ask for
// the key on every call, so a rotated secret is picked up without a
// restart.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

// StaticCredential is a fixed key, mostly for tests and the MCP binary.
type StaticCredential string

func (s StaticCredential) APIKey(ctx context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("API key is empty")
	}
	return string(s), nil
}

// EnvCredential reads the variable Name, falling back to the file named
// by Name_FILE (the usual way mounted secrets are exposed).
type EnvCredential struct {
	Name string
}

func (e EnvCredential) APIKey(ctx context.Context) (string, error) {
	if v := strings.TrimSpace(os.Getenv(e.Name)); v != "" {
		return v, nil
	}
	if path := os.Getenv(e.Name + "_FILE"); path != "" {
		return FileCredential{Path: path}.APIKey(ctx)
	}
	return "", fmt.Errorf("API key not configured; set %s or %s_FILE", e.Name, e.Name)
}

// FileCredential reads the key from a file on every call.
type FileCredential struct {
	Path string
}

func (f FileCredential) APIKey(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read API key file: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("API key file %s is empty", f.Path)
	}
	return key, nil
}
