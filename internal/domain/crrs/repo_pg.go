package crrs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vijay-veer/swasthya-sarthi/internal/platform/db"
)

type scoreRepoPG struct{ pool *pgxpool.Pool }

func NewScoreRepoPG(pool *pgxpool.Pool) ScoreRepository { return &scoreRepoPG{pool: pool} }

const scoreCols = `id, patient_profile_id, score_date, crrs_value, previous_crrs, delta_crrs, risk_tier,
	vitals_contribution, lifestyle_contribution, adherence_contribution, symptoms_contribution, trend_contribution,
	explanation, calculation_details, created_at, updated_at`

func scanScore(row pgx.Row) (*Score, error) {
	var s Score
	err := row.Scan(&s.ID, &s.PatientProfileID, &s.ScoreDate, &s.Value, &s.PreviousValue, &s.Delta, &s.RiskTier,
		&s.Contributions.Vitals, &s.Contributions.Lifestyle, &s.Contributions.Adherence,
		&s.Contributions.Symptoms, &s.Contributions.Trend,
		&s.Explanation, &s.CalculationDetails, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.ScoreDate = DateOnly(s.ScoreDate)
	return &s, nil
}

func (r *scoreRepoPG) FetchPrevious(ctx context.Context, profileID uuid.UUID, before time.Time) (*Score, error) {
	s, err := scanScore(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+scoreCols+` FROM crrs_scores
		WHERE patient_profile_id = $1 AND score_date < $2
		ORDER BY score_date DESC LIMIT 1`, profileID, DateOnly(before)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch previous score for %s: %w", profileID, err)
	}
	return s, nil
}

// Upsert relies on uq_crrs_scores_profile_date. A recompute keeps the row's
// first id and created_at.
func (r *scoreRepoPG) Upsert(ctx context.Context, s *Score) (*Score, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	stored, err := scanScore(db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO crrs_scores (id, patient_profile_id, score_date, crrs_value, previous_crrs, delta_crrs, risk_tier,
			vitals_contribution, lifestyle_contribution, adherence_contribution, symptoms_contribution, trend_contribution,
			explanation, calculation_details)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (patient_profile_id, score_date) DO UPDATE SET
			crrs_value = EXCLUDED.crrs_value,
			previous_crrs = EXCLUDED.previous_crrs,
			delta_crrs = EXCLUDED.delta_crrs,
			risk_tier = EXCLUDED.risk_tier,
			vitals_contribution = EXCLUDED.vitals_contribution,
			lifestyle_contribution = EXCLUDED.lifestyle_contribution,
			adherence_contribution = EXCLUDED.adherence_contribution,
			symptoms_contribution = EXCLUDED.symptoms_contribution,
			trend_contribution = EXCLUDED.trend_contribution,
			explanation = EXCLUDED.explanation,
			calculation_details = EXCLUDED.calculation_details,
			updated_at = NOW()
		RETURNING `+scoreCols,
		s.ID, s.PatientProfileID, DateOnly(s.ScoreDate), s.Value, s.PreviousValue, s.Delta, s.RiskTier,
		s.Contributions.Vitals, s.Contributions.Lifestyle, s.Contributions.Adherence,
		s.Contributions.Symptoms, s.Contributions.Trend,
		s.Explanation, s.CalculationDetails))
	if err != nil {
		return nil, fmt.Errorf("upsert score for %s on %s: %w", s.PatientProfileID, s.ScoreDate.Format(DateLayout), err)
	}
	return stored, nil
}

func (r *scoreRepoPG) GetByDate(ctx context.Context, profileID uuid.UUID, date time.Time) (*Score, error) {
	s, err := scanScore(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+scoreCols+` FROM crrs_scores
		WHERE patient_profile_id = $1 AND score_date = $2`, profileID, DateOnly(date)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrScoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get score: %w", err)
	}
	return s, nil
}

func (r *scoreRepoPG) ListByPatient(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*Score, int, error) {
	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM crrs_scores WHERE patient_profile_id = $1`, profileID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+scoreCols+` FROM crrs_scores
		WHERE patient_profile_id = $1 ORDER BY score_date DESC LIMIT $2 OFFSET $3`, profileID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Score
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}
