package crrs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
)

// Service resolves profiles by ID for callers that only hold an identifier.
type Service struct {
	engine   *Engine
	profiles patient.ProfileRepository
	scores   ScoreRepository
	now      func() time.Time
}

func NewService(engine *Engine, profiles patient.ProfileRepository, scores ScoreRepository) *Service {
	return &Service{engine: engine, profiles: profiles, scores: scores, now: time.Now}
}

// Today is the current calendar date in the engine's scoring timezone.
func (s *Service) Today() time.Time {
	return DateOnly(s.now().In(s.engine.Config().Location))
}

func (s *Service) Compute(ctx context.Context, profileID uuid.UUID, date time.Time) (*Score, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return s.engine.Compute(ctx, profile, date)
}

func (s *Service) GetScore(ctx context.Context, profileID uuid.UUID, date time.Time) (*Score, error) {
	return s.scores.GetByDate(ctx, profileID, date)
}

func (s *Service) ListScores(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*Score, int, error) {
	return s.scores.ListByPatient(ctx, profileID, limit, offset)
}
