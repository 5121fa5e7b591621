package litetable

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// HomeEnv overrides the LiteTable directory.
	HomeEnv = "LITETABLE_HOME"

	defaultDirName = ".litetable"
)

// GetLitetableDir returns $LITETABLE_HOME when set, otherwise .litetable in the user's home
// directory.
func GetLitetableDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, defaultDirName), nil
}
