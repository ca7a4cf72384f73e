package resume

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mailpane/mailpane/internal/store"
)

// Profile is the candidate resume attached to AI-drafted replies. All
// content fields are free text.
type Profile struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Summary        string `json:"summary"`
	Education      string `json:"education"`
	Skills         string `json:"skills"`
	Experience     string `json:"experience"`
	Projects       string `json:"projects"`
	Certifications string `json:"certifications"`

	LastUpdated time.Time `json:"lastUpdated"`
	ID          string    `json:"id"`
}

// Service persists resume profiles with bounded version history.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService creates a resume service backed by the given store.
func NewService(s *store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Save assigns a fresh version identity to the profile and persists it.
// Every save becomes a history entry; the store retains the last ten.
func (s *Service) Save(ctx context.Context, profile Profile) (Profile, error) {
	profile.LastUpdated = s.now()
	profile.ID = uuid.NewString()

	payload, err := json.Marshal(profile)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to serialize resume: %w", err)
	}

	err = s.store.SaveResume(ctx, store.ResumeVersion{
		ID:      profile.ID,
		Payload: payload,
		SavedAt: profile.LastUpdated,
	})
	if err != nil {
		return Profile{}, fmt.Errorf("failed to save resume: %w", err)
	}
	return profile, nil
}

// Current returns the newest saved profile, or false when none exists.
func (s *Service) Current(ctx context.Context) (Profile, bool, error) {
	version, ok, err := s.store.CurrentResume(ctx)
	if err != nil {
		return Profile{}, false, fmt.Errorf("failed to load resume: %w", err)
	}
	if !ok {
		return Profile{}, false, nil
	}

	var profile Profile
	if err := json.Unmarshal(version.Payload, &profile); err != nil {
		return Profile{}, false, fmt.Errorf("failed to decode resume: %w", err)
	}
	return profile, true, nil
}

// History returns saved profiles, newest first.
func (s *Service) History(ctx context.Context) ([]Profile, error) {
	versions, err := s.store.ResumeHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume history: %w", err)
	}

	profiles := make([]Profile, 0, len(versions))
	for _, version := range versions {
		var profile Profile
		if err := json.Unmarshal(version.Payload, &profile); err != nil {
			// Skip snapshots written by an incompatible version.
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Export renders the current profile as indented JSON, suitable for
// writing to a file.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	profile, ok, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no resume saved")
	}
	return json.MarshalIndent(profile, "", "  ")
}

// ExportFilename returns the conventional name for an exported profile,
// dated with the current day.
func (s *Service) ExportFilename() string {
	return "resume_data_" + s.now().Format("2006-01-02") + ".json"
}
