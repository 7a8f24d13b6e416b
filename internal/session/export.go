package session

import (
	"encoding/json"
	"fmt"
	"os"

	"hostsman/pkg/models"
)

// writeProfileFile serializes a profile to path as an indented JSON
// document, the interchange format shared with readProfileFile.
func writeProfileFile(path string, profile models.Profile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile %q: %w", profile.Name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile file %s: %w", path, err)
	}
	return nil
}

// readProfileFile reads a profile document produced by writeProfileFile.
func readProfileFile(path string) (*models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile file %s: %w", path, err)
	}
	return &profile, nil
}
