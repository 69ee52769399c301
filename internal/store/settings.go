package store

import "errors"

// GetSettings reads the process-wide settings record. The settings file is
// the one record that defaults when absent: the first read returns defaults
// without creating the file.
func (s *Store) GetSettings() (*Settings, error) {
	var settings Settings
	err := readJSON(s.settingsPath(), &settings)
	if errors.Is(err, ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings overwrites the settings record. The file mode is restricted
// to the owner because the record may hold export credentials.
func (s *Store) UpdateSettings(settings *Settings) error {
	if settings.DefaultVariantCount < 1 {
		return validationf("default variant count must be at least 1")
	}
	return writeAtomic(s.settingsPath(), settings, 0o600)
}
