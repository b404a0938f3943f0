package model

// Settings holds user preferences persisted alongside the checklist
type Settings struct {
	// CascadeAllPreviousEnabled marks every earlier item done when an item is checked
	CascadeAllPreviousEnabled bool `json:"cascadeAllPreviousEnabled"`
}

// DefaultSettings returns the settings used when nothing valid is stored
func DefaultSettings() Settings {
	return Settings{}
}
