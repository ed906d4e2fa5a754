package crrs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrScoreNotFound = errors.New("crrs score not found")

type ScoreRepository interface {
	// FetchPrevious returns the latest score dated strictly before the
	// given date, or nil, nil when the patient has none.
	FetchPrevious(ctx context.Context, profileID uuid.UUID, before time.Time) (*Score, error)
	// Upsert stores s, replacing any score for the same patient and date,
	// and returns the stored row.
	Upsert(ctx context.Context, s *Score) (*Score, error)
	GetByDate(ctx context.Context, profileID uuid.UUID, date time.Time) (*Score, error)
	ListByPatient(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*Score, int, error)
}
