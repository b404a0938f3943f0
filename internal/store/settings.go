package store

import (
	"encoding/json"
	"fmt"

	"github.com/dori/ectrack/internal/model"
)

// readSettingsLocked falls back to defaults when the value is missing or malformed
func (s *Store) readSettingsLocked() model.Settings {
	raw, ok, err := s.kv.GetValue(KeySettings)
	if err != nil || !ok {
		return model.DefaultSettings()
	}
	settings := model.DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return model.DefaultSettings()
	}
	return settings
}

func (s *Store) readHintLocked() bool {
	raw, ok, err := s.kv.GetValue(KeyHintDismissed)
	return err == nil && ok && raw == "true"
}

// Settings returns the current user settings
func (s *Store) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetCascadeAllPrevious enables or disables the all-previous cascade
func (s *Store) SetCascadeAllPrevious(enabled bool) error {
	s.mu.Lock()
	next := s.settings
	next.CascadeAllPreviousEnabled = enabled

	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.kv.SetValue(KeySettings, string(data)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.settings = next
	s.mu.Unlock()

	s.emit(Event{Kind: EventSettingsChanged, Done: enabled})
	return nil
}

// HintDismissed reports whether the usage hint was dismissed
func (s *Store) HintDismissed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hintDismissed
}

// DismissHint hides the usage hint for good
func (s *Store) DismissHint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hintDismissed {
		return nil
	}
	if err := s.kv.SetValue(KeyHintDismissed, "true"); err != nil {
		return fmt.Errorf("failed to save hint flag: %w", err)
	}
	s.hintDismissed = true
	return nil
}
