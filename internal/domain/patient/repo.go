package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound = errors.New("patient profile not found")
	ErrUserNotFound    = errors.New("user not found")
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*PatientProfile, error)
	// ListIDs returns every profile ID, oldest first.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// VitalStore returns readings for a profile with start <= ts < end,
// ordered by reading timestamp.
type VitalStore interface {
	FetchVitals(ctx context.Context, profileID uuid.UUID, start, end time.Time) ([]*VitalReading, error)
}

// EncounterStore returns a user's encounters with start <= ts < end.
type EncounterStore interface {
	FetchEncounters(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*Encounter, error)
}

// Resolver loads a Subject by profile ID.
type Resolver struct {
	profiles ProfileRepository
	users    UserRepository
}

func NewResolver(profiles ProfileRepository, users UserRepository) *Resolver {
	return &Resolver{profiles: profiles, users: users}
}

func (r *Resolver) Resolve(ctx context.Context, profileID uuid.UUID) (*Subject, error) {
	profile, err := r.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	user, err := r.users.GetByID(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	return &Subject{Profile: profile, User: user}, nil
}

// ProfileIDs lists all profiles for batch runs.
func (r *Resolver) ProfileIDs(ctx context.Context) ([]uuid.UUID, error) {
	return r.profiles.ListIDs(ctx)
}
