package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is the per-folder view settings file.
const SettingsFileName = ".notedeck.yml"

// Sort orders accepted in a folder's view settings.
const (
	SortByModified = "modified"
	SortByTitle    = "title"
	SortByName     = "name"
)

// ProjectSettings holds the view options of a single folder.
type ProjectSettings struct {
	Label     string `yaml:"label,omitempty"`
	SortBy    string `yaml:"sort_by"`
	SortDesc  bool   `yaml:"sort_desc"`
	ShowInAll bool   `yaml:"show_in_all"`
	Hidden    bool   `yaml:"hidden"`
}

// DefaultProjectSettings returns the settings used when a folder has no settings file.
func DefaultProjectSettings() ProjectSettings {
	return ProjectSettings{
		SortBy:    SortByModified,
		SortDesc:  true,
		ShowInAll: true,
	}
}

// LoadSettings reads the settings file of dir, falling back to defaults when absent.
func LoadSettings(dir string) (ProjectSettings, error) {
	settings := DefaultProjectSettings()

	data, err := os.ReadFile(filepath.Join(dir, SettingsFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, err
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultProjectSettings(), fmt.Errorf("failed to parse %s: %w", SettingsFileName, err)
	}

	switch settings.SortBy {
	case SortByModified, SortByTitle, SortByName:
	default:
		settings.SortBy = SortByModified
	}

	return settings, nil
}

// SaveSettings writes settings into dir
func SaveSettings(dir string, settings ProjectSettings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, SettingsFileName), data, 0644)
}
