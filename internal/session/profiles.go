// internal/session/profiles.go
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"nutrition-tracker/internal/models"
)

// Profiles returns a copy of the profile collection in insertion order.
func (s *Session) Profiles() []models.Profile {
	out := make([]models.Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// ActiveProfileID returns the active profile pointer, or "" when none is set.
func (s *Session) ActiveProfileID() string {
	return s.activeProfileID
}

// ProfileByID looks up a profile by its id.
func (s *Session) ProfileByID(id string) (models.Profile, bool) {
	p, ok := s.profileByID(id)
	if !ok {
		return models.Profile{}, false
	}
	return *p, true
}

func (s *Session) profileByID(id string) (*models.Profile, bool) {
	if id == "" {
		return nil, false
	}
	for i := range s.profiles {
		if s.profiles[i].ID == id {
			return &s.profiles[i], true
		}
	}
	return nil, false
}

func (s *Session) newProfileID() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

// SaveProfile snapshots attrs under name and makes the saved profile active.
// A case-insensitive name match overwrites that profile, taking the new
// spelling and attributes; otherwise a new profile is created with a
// generated id. The loose attributes are replaced by attrs as well, since
// they are the values just snapshotted.
func (s *Session) SaveProfile(ctx context.Context, name string, attrs models.UserAttributes) (models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Profile{}, fmt.Errorf("profile name required")
	}

	s.attributes = attrs

	for i := range s.profiles {
		if strings.EqualFold(s.profiles[i].Name, name) {
			s.profiles[i].Name = name
			s.profiles[i].Attributes = attrs
			s.activeProfileID = s.profiles[i].ID
			return s.profiles[i], s.save(ctx)
		}
	}

	p := models.Profile{
		ID:         s.newProfileID(),
		Name:       name,
		Attributes: attrs,
	}
	s.profiles = append(s.profiles, p)
	s.activeProfileID = p.ID
	return p, s.save(ctx)
}

// RenameProfile replaces a profile's display name in place. Uniqueness is
// not re-checked here, so a rename can produce duplicate names; save is the
// only operation that deduplicates.
func (s *Session) RenameProfile(ctx context.Context, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("profile name required")
	}
	p, ok := s.profileByID(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p.Name = newName
	return s.save(ctx)
}

// DeleteProfile removes a profile. Deleting the active profile clears the
// active pointer; the loose attributes are untouched.
func (s *Session) DeleteProfile(ctx context.Context, id string) error {
	idx := -1
	for i := range s.profiles {
		if s.profiles[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.profiles = append(s.profiles[:idx], s.profiles[idx+1:]...)
	if s.activeProfileID == id {
		s.activeProfileID = ""
	}
	return s.save(ctx)
}

// LoadProfile makes a profile active, replacing the loose attributes
// wholesale with the profile's snapshot (replace, not merge).
func (s *Session) LoadProfile(ctx context.Context, id string) (models.Profile, error) {
	p, ok := s.profileByID(id)
	if !ok {
		return models.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.attributes = p.Attributes
	s.activeProfileID = p.ID
	return *p, s.save(ctx)
}
