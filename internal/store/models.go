package store

import "time"

// ResumeVersion is one saved snapshot of the resume profile. Payload is
// the serialized profile as the resume package wrote it.
type ResumeVersion struct {
	ID      string
	Payload []byte
	SavedAt time.Time
}

// ContextEntry is one recorded AI interaction, newest first.
type ContextEntry struct {
	ID           string
	Type         string
	EmailSubject string
	Summary      string
	CreatedAt    time.Time
}

// Preferences holds per-user display and behavior settings.
type Preferences struct {
	Theme         string
	SidebarOpen   bool
	EmailsPerPage int
	AutoSave      bool
	Language      string
}

// DefaultPreferences returns the settings applied before the user has
// saved any.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "light",
		SidebarOpen:   true,
		EmailsPerPage: 25,
		AutoSave:      true,
		Language:      "en",
	}
}
