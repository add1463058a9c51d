package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProfileOverride replaces parts of a platform's built-in download profile.
// Unset fields keep the built-in value.
type ProfileOverride struct {
	Tool       string   `yaml:"tool"`
	Phase      string   `yaml:"phase"`
	FormatArgs []string `yaml:"format_args"`
}

// ProfilesFile is the YAML document read from PROFILES_FILE, keyed by
// platform tag.
type ProfilesFile struct {
	Platforms map[string]ProfileOverride `yaml:"platforms"`
}

// LoadProfiles reads profile overrides. An empty path yields no overrides.
func LoadProfiles(path string) (*ProfilesFile, error) {
	if path == "" {
		return &ProfilesFile{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var pf ProfilesFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	return &pf, nil
}
