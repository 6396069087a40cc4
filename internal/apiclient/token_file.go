package apiclient

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// SaveToken writes token to path, readable by the owner only.
func SaveToken(path, token string) error {
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// LoadToken returns the saved token, or "" when none was saved.
func LoadToken(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func ClearToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
